package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

const (
	promptExt = ".txt"

	// contextPlaceholder receives the retrieved passages.
	contextPlaceholder = "%s"
)

// builtinPrompts are written to the prompt directory on first use and
// served whenever a file is missing or unusable.
var builtinPrompts = map[string]string{
	driven.PromptChatSystem: driven.DefaultChatSystemPrompt,
}

const promptReadme = `# docchat prompts

Files in this directory are the prompts docchat sends to the language model.

- chat_system.txt: system prompt used to answer from retrieved passages

The prompt may contain one %s placeholder, which receives the passages
formatted as "[Page N]: text". Without one, the passages are appended after
the prompt. Delete a file to restore its default.

The CLI reads prompts on every run. 'docchat serve' and 'docchat mcp serve'
pick up edits without a restart.
`

// PromptStore serves prompt templates from <dir>/<name>.txt.
// Nothing touches disk until the first Load.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir means ~/.docchat/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docchat", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. A missing or invalid file yields the
// built-in default when one exists.
func (s *PromptStore) Load(name string) (string, error) {
	s.setup.Do(s.seed)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	text, err := s.read(name)
	if err != nil {
		if builtin, ok := builtinPrompts[name]; ok {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("Prompt %s: %v, using default", name, err)
			}
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = text
	return text, nil
}

// Reload drops cached templates so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Watch reloads templates whenever a file in the prompt directory changes.
// It blocks until ctx is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.setup.Do(s.seed)
	if s.setupErr != nil {
		return s.setupErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating prompt watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != promptExt {
				continue
			}
			logger.Debug("Prompt %s changed, reloading", filepath.Base(event.Name))
			s.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher: %v", err)
		}
	}
}

// seed creates the directory and writes any missing default files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.setupErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, text := range builtinPrompts {
		files[name+promptExt] = text
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.setupErr = fmt.Errorf("write default %s: %w", name, err)
			return
		}
	}
}

func (s *PromptStore) read(name string) (string, error) {
	if s.setupErr != nil {
		return "", s.setupErr
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if n := strings.Count(text, contextPlaceholder); n > 1 {
		return "", fmt.Errorf("%w: %d %s placeholders, at most one allowed",
			domain.ErrInvalidInput, n, contextPlaceholder)
	}
	return text, nil
}
