// Package chunk splits long replies into messages that fit a chat
// platform's length limit.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultLimit leaves room under the usual 2000 character message cap.
const DefaultLimit = 1800

const fence = "```"

// Split breaks text into chunks of at most limit runes. Chunks end on line
// boundaries when possible. A chunk that ends inside a ``` block is closed
// and the next one reopens it. A line longer than the limit is cut.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	// Room for the fence we may have to add on each side.
	room := limit - 2*(len(fence)+1)
	lineRoom := room - len(fence) - 1
	if lineRoom < 1 {
		room, lineRoom = len(fence)+2, 1
	}

	var (
		chunks  []string
		cur     []string
		size    int
		inFence bool
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		body := strings.Join(cur, "\n")
		if inFence {
			body += "\n" + fence
		}
		chunks = append(chunks, body)
		cur, size = nil, 0
		if inFence {
			cur = []string{fence}
			size = len(fence)
		}
	}
	add := func(line string) {
		n := utf8.RuneCountInString(line)
		if len(cur) > 0 && size+1+n > room {
			flush()
			// The block was already closed by flush.
			if inFence && strings.TrimSpace(line) == fence {
				cur, size, inFence = nil, 0, false
				return
			}
		}
		if len(cur) > 0 {
			size++
		}
		cur = append(cur, line)
		size += n
		inFence = toggles(line, inFence)
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > lineRoom {
			head, tail := cut(line, lineRoom)
			add(head)
			line = tail
		}
		add(line)
	}
	// The last chunk closes nothing it did not open.
	if len(cur) > 0 && !(len(cur) == 1 && cur[0] == fence) {
		chunks = append(chunks, strings.Join(cur, "\n"))
	}
	return chunks
}

// toggles reports the fence state after line. A line holding a fence pair,
// such as "```text```", leaves it unchanged.
func toggles(line string, open bool) bool {
	if strings.Count(line, fence)%2 == 1 {
		return !open
	}
	return open
}

// cut splits s after n runes.
func cut(s string, n int) (string, string) {
	i := 0
	for j := range s {
		if i == n {
			return s[:j], s[j:]
		}
		i++
	}
	return s, ""
}

// Lines joins messages made of lines and splits the result.
func Lines(lines []string, limit int) []string {
	return Split(strings.Join(lines, "\n"), limit)
}
