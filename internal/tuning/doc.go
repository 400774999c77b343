// Package tuning manages the curated example set injected into every
// prompt as few-shot context, and assembles the final prompt text.
//
// Examples live in a single flat JSON file (a pretty-printed array of
// {input, output} objects). The file is read fully at startup and
// rewritten fully on every append; there is no incremental append
// format. A missing or corrupt file degrades to an empty set rather
// than failing startup.
//
// This is prompt-context tuning only. Nothing here touches model
// weights.
package tuning
