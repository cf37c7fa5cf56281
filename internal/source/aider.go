package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/n-WN/prompt-manager/internal/model"
)

// AiderParser reads .aider.chat.history.md transcripts. Aider drops one per
// working directory, so discovery sweeps a few likely project roots a couple
// of levels deep.
type AiderParser struct {
	home string
}

func NewAiderParser(opts Options) *AiderParser {
	return &AiderParser{home: opts.home()}
}

func (p *AiderParser) Name() string { return model.SourceAider }

func (p *AiderParser) SchemaVersion() int { return 1 }

const aiderHistoryName = ".aider.chat.history.md"

// searchRoots lists the directories histories are searched under: the home
// directory itself plus common project tree locations.
func (p *AiderParser) searchRoots() []string {
	return []string{
		p.home,
		filepath.Join(p.home, "projects"),
		filepath.Join(p.home, "code"),
		filepath.Join(p.home, "dev"),
		filepath.Join(p.home, "work"),
		filepath.Join(p.home, "my"),
	}
}

func (p *AiderParser) FindLogFiles() ([]string, error) {
	depths := []string{"", "*", filepath.Join("*", "*"), filepath.Join("*", "*", "*")}

	seen := make(map[string]struct{})
	var files []string
	for _, root := range p.searchRoots() {
		for _, depth := range depths {
			for _, f := range globFiles(filepath.Join(root, depth), aiderHistoryName) {
				resolved := f
				if abs, err := filepath.Abs(f); err == nil {
					resolved = abs
				}
				if _, ok := seen[resolved]; ok {
					continue
				}
				seen[resolved] = struct{}{}
				files = append(files, resolved)
			}
		}
	}
	return files, nil
}

func (p *AiderParser) Roots() []string {
	return p.searchRoots()
}

var aiderSessionRE = regexp.MustCompile(`(?m)^# aider chat started at (.+)$`)

// ParseFile splits the history into sessions on the chat-started heading and
// collects "> "-quoted line runs as user prompts. Aider interleaves diffs and
// announcements rather than clean assistant text, so no response is captured.
func (p *AiderParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	projectPath := filepath.Dir(path)

	var prompts []model.ParsedPrompt

	matches := aiderSessionRE.FindAllStringSubmatchIndex(content, -1)
	for m, loc := range matches {
		tsRaw := strings.TrimSpace(content[loc[2]:loc[3]])
		bodyStart := loc[1]
		bodyEnd := len(content)
		if m+1 < len(matches) {
			bodyEnd = matches[m+1][0]
		}

		ts, hasTime := ParseTimestamp(tsRaw)
		timeKey := ""
		if hasTime {
			timeKey = ts.Format("2006-01-02 15:04:05")
		}
		sessionID := stem + "_" + strings.NewReplacer(" ", "_", ":", "-").Replace(tsRaw)

		var block []string
		flush := func() {
			if len(block) == 0 {
				return
			}
			text := strings.TrimSpace(strings.Join(block, "\n"))
			block = nil
			if !longEnough(text) {
				return
			}
			prompts = append(prompts, model.ParsedPrompt{
				ID:          GenerateID(model.SourceAider, text, sessionID, timeKey),
				Source:      model.SourceAider,
				Content:     text,
				ProjectPath: projectPath,
				SessionID:   sessionID,
				Timestamp:   ts,
				HasTime:     hasTime,
			})
		}

		for _, line := range strings.Split(content[bodyStart:bodyEnd], "\n") {
			switch {
			case strings.HasPrefix(line, "> "):
				block = append(block, line[2:])
			case strings.TrimSpace(line) == ">":
				block = append(block, "")
			default:
				flush()
			}
		}
		flush()
	}

	return prompts, nil
}
