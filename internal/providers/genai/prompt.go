package genai

import (
	sdk "google.golang.org/genai"

	"imgprompt/internal/domain"
)

// Instruction is sent with every request.
const Instruction = "You are a professional AI prompt engineer. Analyze this image in extreme detail. " +
	"Generate a single high-fidelity, descriptive art prompt optimized for Midjourney v6 and Stable Diffusion. " +
	"Focus on: subject matter, lighting, camera settings, textures, mood, and art style. " +
	"Provide ONLY the prompt text, with no preamble, quotes, or commentary."

// InstructionText returns the instruction, with a bracketed context note when
// the image is only available as a URL.
func InstructionText(referenceURL string) string {
	if referenceURL == "" {
		return Instruction
	}
	return Instruction + " \n[Reference Content: " + referenceURL + "]"
}

// BuildParts assembles the instruction part and at most one inline image part.
func BuildParts(req domain.VisionRequest) []*sdk.Part {
	parts := []*sdk.Part{sdk.NewPartFromText(InstructionText(req.ReferenceURL))}
	if req.Image.IsEmbedded() {
		parts = append(parts, &sdk.Part{InlineData: &sdk.Blob{
			MIMEType: req.Image.MediaType(),
			Data:     req.Image.Bytes(),
		}})
	}
	return parts
}
