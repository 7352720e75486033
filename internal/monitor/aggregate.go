package monitor

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
)

// logEntry is one line of a Claude Code transcript. Only assistant entries
// carrying a usage object count toward totals; everything else is skipped
// without error.
type logEntry struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Message   *logMsg `json:"message,omitempty"`
}

type logMsg struct {
	Usage *logUsage `json:"usage,omitempty"`
}

type logUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// FileTotals is the fold of one transcript file.
type FileTotals struct {
	InputTokens              int64
	OutputTokens             int64
	CacheReadInputTokens     int64
	CacheCreationInputTokens int64

	// EarliestTimestamp is the first non-empty timestamp seen in file order
	// across all decoded records, or "" when none carried one.
	EarliestTimestamp string
}

func (t *FileTotals) add(other FileTotals) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.CacheReadInputTokens += other.CacheReadInputTokens
	t.CacheCreationInputTokens += other.CacheCreationInputTokens

	// ISO-8601 with zero-padded fields sorts lexicographically in
	// chronological order, so string min is the earlier instant.
	if other.EarliestTimestamp != "" &&
		(t.EarliestTimestamp == "" || other.EarliestTimestamp < t.EarliestTimestamp) {
		t.EarliestTimestamp = other.EarliestTimestamp
	}
}

// aggregateFile streams the transcript at path and folds assistant usage
// records into totals. Malformed lines are tolerated; an unreadable file
// contributes all zeroes.
func aggregateFile(path string) FileTotals {
	var totals FileTotals

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[aggregate] opening %s: %v", path, err)
		}
		return totals
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max line size

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry logEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // skip malformed lines
		}
		if totals.EarliestTimestamp == "" && entry.Timestamp != "" {
			totals.EarliestTimestamp = entry.Timestamp
		}
		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Usage == nil {
			continue
		}

		u := entry.Message.Usage
		totals.InputTokens += u.InputTokens
		totals.OutputTokens += u.OutputTokens
		totals.CacheReadInputTokens += u.CacheReadInputTokens
		totals.CacheCreationInputTokens += u.CacheCreationInputTokens
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[aggregate] scanning %s: %v", path, err)
		return FileTotals{}
	}

	return totals
}
