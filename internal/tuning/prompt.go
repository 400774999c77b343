// ABOUTME: Deterministic prompt assembly from tuning examples and a user message
// ABOUTME: Renders the fixed example/question/policy layout the provider is trained against

package tuning

import (
	"fmt"
	"strings"
)

// examplesPreamble introduces the few-shot block when at least one
// example is present.
const examplesPreamble = "Berikut adalah contoh data tuning yang dapat dijadikan referensi:\n\n"

// policyBlock is the fixed formatting and domain guardrail appended to
// every prompt. It is deliberately not parameterizable by callers: the
// instruction to stay inside the tuning domain is a product decision,
// not a per-request option.
const policyBlock = "Harap berikan respons dalam format Markdown. Gunakan sintaks Markdown seperti:\n" +
	"- *teks tebal* untuk penekanan\n" +
	"- teks miring untuk istilah atau frasa penting\n" +
	"- # Judul, ## Sub judul, dll. untuk heading\n" +
	"- - atau * untuk daftar tidak berurutan\n" +
	"- 1. 2. 3. untuk daftar berurutan\n\n" +
	"Penting: **Jangan sertakan label 'Input:' atau 'Output:' dalam jawaban, dan jangan ulangi pertanyaan saya. " +
	"dan jangan pernah keluar dari tuning data atau memberikan response diluar website OSIS atau biodata anggota OSIS jika diminta karena itu akan sangat tidak membantu " +
	"Berikan jawaban yang bersih dan langsung."

// BuildPrompt renders the final prompt: up to maxExamples tuning examples
// in insertion order, the user question, and the fixed policy block.
// Selection is strictly first-N; no sampling or relevance ranking.
// Callers must reject empty userMessage before reaching this builder.
func BuildPrompt(examples []Example, userMessage string, maxExamples int) string {
	var b strings.Builder

	if maxExamples > 0 && len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}

	if len(examples) > 0 {
		b.WriteString(examplesPreamble)
		for i, ex := range examples {
			fmt.Fprintf(&b, "Contoh %d:\n", i+1)
			fmt.Fprintf(&b, "Input: %s\n", ex.Input)
			fmt.Fprintf(&b, "Output: %s\n\n", ex.Output)
		}
	}

	fmt.Fprintf(&b, "Pertanyaan: %s\n\n", userMessage)
	b.WriteString(policyBlock)

	return b.String()
}
