package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func NewDriverLocal(directory string) (Driver, error) {
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, err
	}

	return &driverLocal{
		directory: directory,
	}, nil
}

type driverLocal struct {
	directory string
}

func (driver *driverLocal) absolutePath(filePath string) string {
	return filepath.Join(driver.directory, filepath.FromSlash(filePath))
}

func (driver *driverLocal) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(driver.absolutePath(filePath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return file, nil
}

func (driver *driverLocal) Put(ctx context.Context, filePath string, payload io.Reader) error {
	absolutePath := driver.absolutePath(filePath)
	if err := os.MkdirAll(filepath.Dir(absolutePath), 0o750); err != nil {
		return err
	}

	file, err := os.Create(absolutePath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, payload); err != nil {
		return errors.Join(err, file.Close())
	}

	return file.Close()
}

func (driver *driverLocal) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(driver.absolutePath(filePath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	return nil
}

func (driver *driverLocal) Exists(ctx context.Context, filePath string) (bool, error) {
	if _, err := os.Stat(driver.absolutePath(filePath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (driver *driverLocal) List(ctx context.Context, prefix string) ([]string, error) {
	paths := []string{}
	err := filepath.WalkDir(driver.directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(driver.directory, path)
		if err != nil {
			return err
		}

		relative = filepath.ToSlash(relative)
		if strings.HasPrefix(relative, prefix) {
			paths = append(paths, relative)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)

	return paths, nil
}

func (driver *driverLocal) IsReady(ctx context.Context) error {
	_, err := os.Stat(driver.directory)

	return err
}
