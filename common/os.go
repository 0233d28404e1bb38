package common

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// WriteFileAtomic writes to newBytes to filePath.
// Guaranteed not to lose *both* oldBytes and newBytes,
// (assuming that the OS is perfect)
func WriteFileAtomic(filePath string, newBytes []byte, mode os.FileMode) error {
	// If a file already exists there, copy to filePath+".bak" (overwrite anything)
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		fileBytes, err := ioutil.ReadFile(filePath)
		if err != nil {
			return errors.Wrapf(err, "could not read file %v", filePath)
		}
		err = ioutil.WriteFile(filePath+".bak", fileBytes, mode)
		if err != nil {
			return errors.Wrapf(err, "could not write file %v", filePath+".bak")
		}
	}
	// Write newBytes to filePath.new
	err := ioutil.WriteFile(filePath+".new", newBytes, mode)
	if err != nil {
		return errors.Wrapf(err, "could not write file %v", filePath+".new")
	}
	// Move filePath.new to filePath
	return errors.Wrapf(os.Rename(filePath+".new", filePath), "could not move file into %v", filePath)
}

// FileExists reports whether a regular file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
