//go:build windows

package orchestrator

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func checkExecutable(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return &os.PathError{Op: "stat", Path: path, Err: err}
	}
	if attrs&windows.FILE_ATTRIBUTE_DIRECTORY != 0 {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
