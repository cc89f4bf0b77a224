package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the command's stdout for an empty path, else creates path.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	return file, nil
}

// writeAtomic writes through a temporary sibling of path and renames it into
// place. The temporary file is removed on every failure path.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, removeQuiet(tmp.Name()))
		}
	}()

	err = write(tmp)
	if err != nil {
		return errors.Join(err, tmp.Close())
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

func removeQuiet(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temporary file: %w", err)
	}

	return nil
}
