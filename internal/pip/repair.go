package pip

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const envInterpreter = "/usr/bin/env"

// RepairTree fixes every regular file under root: absolute interpreter
// shebangs become /usr/bin/env lookups and modes are normalized. Symlinks
// are left alone. Running it again changes nothing.
func RepairTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return walkErr
		}
		if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		return repairFile(path)
	})
}

func repairFile(path string) error {
	return repairFileWith(path, fixShebang)
}

// repairFileWith restores the original mode when fix fails.
func repairFileWith(path string, fix func(string) (bool, error)) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	orig := info.Mode().Perm()

	// Owner read-write first so the shebang can be inspected and rewritten.
	if orig&0o600 != 0o600 {
		if err := os.Chmod(path, orig|0o600); err != nil {
			return err
		}
	}
	rewritten, err := fix(path)
	if err != nil {
		if chErr := os.Chmod(path, orig); chErr != nil {
			return errors.Join(err, chErr)
		}
		return err
	}
	return os.Chmod(path, normalizedMode(orig, rewritten))
}

// normalizedMode: executables (owner-exec set, or a rewritten script) gain
// 0755; everything else gains owner read-write and keeps its other bits.
func normalizedMode(orig fs.FileMode, script bool) fs.FileMode {
	if orig&0o100 != 0 || script {
		return orig | 0o755
	}
	return orig | 0o600
}

func fixShebang(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	head := make([]byte, 2)
	n, err := io.ReadFull(f, head)
	f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	if n < 2 || !bytes.Equal(head, []byte("#!")) {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	firstLine, rest, hasRest := bytes.Cut(data, []byte("\n"))
	line, ok := rewriteShebang(string(firstLine))
	if !ok {
		return false, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(envInterpreter))
	buf.WriteString(line)
	if hasRest {
		buf.WriteByte('\n')
		buf.Write(rest)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return false, err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		out.Close()
		return false, err
	}
	return true, out.Close()
}

// rewriteShebang turns "#!/abs/path/name args" into "#!/usr/bin/env name args".
func rewriteShebang(line string) (string, bool) {
	body := strings.TrimLeft(strings.TrimPrefix(line, "#!"), " \t")
	body = strings.TrimSuffix(body, "\r")
	interpreter, args := body, ""
	if idx := strings.IndexAny(body, " \t"); idx >= 0 {
		interpreter, args = body[:idx], body[idx+1:]
	}
	if interpreter == "" || !filepath.IsAbs(interpreter) || interpreter == envInterpreter {
		return "", false
	}
	name := filepath.Base(interpreter)
	if name == "" || name == string(filepath.Separator) {
		return "", false
	}
	out := "#!" + envInterpreter + " " + name
	if args = strings.TrimSpace(args); args != "" {
		out += " " + args
	}
	if strings.HasSuffix(line, "\r") {
		out += "\r"
	}
	return out, true
}
