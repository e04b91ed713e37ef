package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Fields    map[string]string
	Raw       string
}

// reserved keys are lifted out of Fields.
var reserved = map[string]bool{
	"time": true, "level": true, "component": true, "message": true, "service": true,
}

// ParseLine decodes a JSON log line. Lines that are not JSON objects come
// back with only Message and Raw set.
func ParseLine(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		entry.Message = trimmed
		return entry
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		entry.Message = trimmed
		return entry
	}

	entry.Level = strings.ToUpper(stringField(payload, "level"))
	entry.Component = stringField(payload, "component")
	entry.Message = stringField(payload, "message")
	if ts := stringField(payload, "time"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = parsed
		}
	}
	for k, v := range payload {
		if reserved[k] {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string)
		}
		entry.Fields[k] = fmt.Sprint(v)
	}
	return entry
}

// ParseLines decodes every line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, len(lines))
	for i, line := range lines {
		out[i] = ParseLine(line)
	}
	return out
}

// Format renders an entry as a single readable line:
// "15:04:05 WARN [cart] message key=value".
func (e Entry) Format() string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Message
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(e.Level)
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + k + "=" + e.Fields[k])
	}
	return b.String()
}

func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}
