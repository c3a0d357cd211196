package sqlinline

const QEnsureSchema = `--sql 5d2c8f71-0e3a-4b96-a4d7-61f0e8c29b3e
create extension if not exists pgcrypto;

create table if not exists integration_tokens (
    id uuid primary key default gen_random_uuid(),
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists prompt_history (
    id uuid primary key,
    owner text not null,
    image_ref text not null,
    prompt text not null,
    backend text not null,
    created_at timestamptz not null default now()
);

create index if not exists prompt_history_owner_created_idx
    on prompt_history (owner, created_at desc);
`
