package sqlinline

const QInsertHistoryEntry = `--sql 3f0b6a2e-51c4-4d8e-9a57-0c2f4be1d9a3
insert into prompt_history (id, owner, image_ref, prompt, backend, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::timestamptz);
`

const QTrimHistory = `--sql 9c1d7e44-2b8a-4f0e-8d63-5a7e1c0b2f19
delete from prompt_history
where owner = $1::text
  and id not in (
    select id
    from prompt_history
    where owner = $1::text
    order by created_at desc, id desc
    limit $2::int
  );
`

const QSelectHistory = `--sql 6e2a9b13-7d40-4c5f-b1e8-2f93a6d0c871
select id::text, image_ref, prompt, backend, created_at
from prompt_history
where owner = $1::text
order by created_at desc, id desc
limit $2::int;
`

const QClearHistory = `--sql b47e0c5a-1f96-4a3d-8e2b-7c1d9f6a0e54
delete from prompt_history
where owner = $1::text;
`
