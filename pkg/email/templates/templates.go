// Package templates holds the embedded HTML email bodies.
// Bodies are mustache templates rendered against the job payload.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/cbroglie/mustache"
)

//go:embed *.html
var files embed.FS

// ErrNotFound is returned for a template name with no embedded file
var ErrNotFound = errors.New("templates: template not found")

var (
	mu     sync.RWMutex
	parsed = map[string]*mustache.Template{}
)

// Render renders the named template against data.
// Parsed templates are cached for the life of the process.
func Render(name string, data map[string]any) (string, error) {
	tpl, err := lookup(name)
	if err != nil {
		return "", err
	}
	return tpl.Render(data)
}

// Exists reports whether name has an embedded file
func Exists(name string) bool {
	_, err := fs.Stat(files, name+".html")
	return err == nil
}

func lookup(name string) (*mustache.Template, error) {
	mu.RLock()
	tpl, ok := parsed[name]
	mu.RUnlock()
	if ok {
		return tpl, nil
	}

	raw, err := files.ReadFile(name + ".html")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	tpl, err = mustache.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	mu.Lock()
	parsed[name] = tpl
	mu.Unlock()
	return tpl, nil
}
