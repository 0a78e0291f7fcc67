// Package textsplitter splits extracted document text into bounded,
// overlapping chunks suitable for embedding. Splitting prefers paragraph
// and sentence boundaries and only falls back to word-level filling when a
// single sentence exceeds the chunk size. Words are never cut in half, so
// a lone token longer than MaxLength is emitted as its own oversized chunk.
package textsplitter

import (
	"regexp"
	"strings"
)

// Options tunes the splitter. Different ingestion call sites use different
// sizes (800/1000 chars with 100-200 overlap); they are configuration, not
// separate code paths.
type Options struct {
	MaxLength          int
	Overlap            int
	PreserveParagraphs bool
	PreserveSentences  bool
}

// DefaultOptions returns the ingestion pipeline defaults.
func DefaultOptions() Options {
	return Options{
		MaxLength:          800,
		Overlap:            100,
		PreserveParagraphs: true,
		PreserveSentences:  true,
	}
}

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// Split breaks text into chunks of at most opts.MaxLength characters.
// Consecutive chunks share an overlap of up to opts.Overlap characters,
// snapped back to a word boundary. Splitting is deterministic: the same
// text and options always produce the same chunks in the same order.
func Split(text string, opts Options) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxLength {
		return []string{text}
	}

	var chunks []string
	if opts.PreserveParagraphs {
		for _, para := range paragraphRe.Split(text, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if len(para) <= opts.MaxLength {
				chunks = append(chunks, para)
			} else {
				chunks = append(chunks, splitLong(para, opts)...)
			}
		}
	} else {
		chunks = splitLong(text, opts)
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitLong handles text longer than MaxLength with the greedy fill
// strategy: accumulate units (sentences, or words inside an oversized
// sentence) until the buffer would overflow, emit the buffer, then seed
// the next buffer with the overlap tail of the emitted chunk.
func splitLong(text string, opts Options) []string {
	var units []string
	if opts.PreserveSentences {
		for _, sent := range splitSentences(text) {
			if len(sent) <= opts.MaxLength {
				units = append(units, sent)
			} else {
				units = append(units, strings.Fields(sent)...)
			}
		}
	} else {
		units = strings.Fields(text)
	}

	var chunks []string
	buf := ""
	for _, u := range units {
		cand := u
		if buf != "" {
			cand = buf + " " + u
		}
		if len(cand) <= opts.MaxLength {
			buf = cand
			continue
		}
		if buf == "" {
			// A single unsplittable unit longer than MaxLength.
			chunks = append(chunks, u)
			continue
		}
		chunks = append(chunks, buf)
		seed := overlapTail(buf, opts.Overlap)
		if seed != "" && len(seed)+1+len(u) <= opts.MaxLength {
			buf = seed + " " + u
		} else {
			buf = u
		}
	}
	if strings.TrimSpace(buf) != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}

// splitSentences splits on sentence terminators, keeping the terminator
// attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// overlapTail returns the trailing overlap characters of chunk, trimmed
// forward to the first word boundary so the overlap never starts mid-word.
// Returns "" when no boundary falls inside the window.
func overlapTail(chunk string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if len(chunk) <= overlap {
		return chunk
	}
	tail := chunk[len(chunk)-overlap:]
	i := strings.IndexAny(tail, " \t\n")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(tail[i+1:])
}
