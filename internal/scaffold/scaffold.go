// Package scaffold copies the project template and the bundled API server into a new directory.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	quickstart "go-quickstart"

	"go.uber.org/zap"
)

const (
	templateSuffix = ".tmpl"
	dotPrefix      = "dot_"
)

//go:embed template
var embedded embed.FS

var ErrTargetIsFile = errors.New("target exists and is not a directory")

// Template returns the bundled project template.
func Template() fs.FS {
	sub, err := fs.Sub(embedded, "template")
	if err != nil {
		panic(err)
	}
	return sub
}

// App returns the bundled API server sources.
func App() fs.FS {
	return quickstart.Source
}

// generatorOnly is the part of the app tree new projects do not need.
var generatorOnly = []string{"internal/scaffold"}

// Data is what .tmpl files are rendered with.
type Data struct {
	ModuleName  string
	ProjectName string
}

type Options struct {
	Data    Data
	DryRun  bool
	Verbose bool
	Log     *zap.Logger

	// Skip lists slash-separated paths whose files are not copied.
	Skip []string

	// ImportPath, when set, is replaced by Data.ModuleName in Go import paths.
	ImportPath string
}

// File is one planned or written output.
type File struct {
	Source string
	Target string
}

// OutputName maps a template path to its output path: the .tmpl suffix is dropped
// and a dot_ prefix on any element becomes a leading dot.
func OutputName(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, dotPrefix) {
			part = "." + strings.TrimPrefix(part, dotPrefix)
		}
		parts[i] = part
	}
	out := path.Join(parts...)
	return strings.TrimSuffix(out, templateSuffix)
}

// Copy walks fsys and writes every file under target, creating directories as needed
// and overwriting existing files. In dry-run mode nothing is written.
func Copy(fsys fs.FS, target string, opts Options) ([]File, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", target, ErrTargetIsFile)
	}

	var files []File
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if skipped(p, opts.Skip) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		dest := filepath.Join(target, filepath.FromSlash(OutputName(p)))

		if d.IsDir() {
			if opts.DryRun {
				return nil
			}
			return os.MkdirAll(dest, 0o755)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read template %s: %w", p, err)
		}
		if strings.HasSuffix(p, templateSuffix) {
			if data, err = render(p, data, opts.Data); err != nil {
				return err
			}
		}
		if opts.ImportPath != "" && strings.HasSuffix(p, ".go") {
			data = rewriteImports(data, opts.ImportPath, opts.Data.ModuleName)
		}

		files = append(files, File{Source: p, Target: dest})
		if opts.Verbose {
			log.Info("file", zap.String("source", p), zap.String("target", dest), zap.Bool("dry_run", opts.DryRun))
		}
		if opts.DryRun {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0o644)
	})
	if err != nil {
		return files, err
	}
	return files, nil
}

// CopyProject writes the starter files followed by the full API server with its
// imports moved to opts.Data.ModuleName.
func CopyProject(target string, opts Options) ([]File, error) {
	files, err := Copy(Template(), target, opts)
	if err != nil {
		return files, err
	}
	app := opts
	app.Skip = append(append([]string{}, opts.Skip...), generatorOnly...)
	app.ImportPath = quickstart.ModulePath
	more, err := Copy(App(), target, app)
	return append(files, more...), err
}

func skipped(p string, prefixes []string) bool {
	for _, s := range prefixes {
		if p == s || strings.HasPrefix(p, s+"/") {
			return true
		}
	}
	return false
}

func rewriteImports(src []byte, from, to string) []byte {
	src = bytes.ReplaceAll(src, []byte(`"`+from+`/`), []byte(`"`+to+`/`))
	return bytes.ReplaceAll(src, []byte(`"`+from+`"`), []byte(`"`+to+`"`))
}

func render(name string, src []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
