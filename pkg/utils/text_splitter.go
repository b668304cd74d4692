package utils

import "unicode"

// SplitText cuts text into chunks of at most chunkSize runes, each starting
// overlap runes before the end of the previous one. A cut prefers the last
// whitespace in the final fifth of the window so words stay whole.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; {
		end := i + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[i:]))
			break
		}

		for j := end; j > end-chunkSize/5 && j > i; j-- {
			if unicode.IsSpace(runes[j-1]) {
				end = j
				break
			}
		}
		chunks = append(chunks, string(runes[i:end]))

		next := end - overlap
		if next <= i {
			next = i + step
		}
		i = next
	}

	return chunks
}
