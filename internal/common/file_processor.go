package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumefit/internal/errors"
	"resumefit/internal/types"
	"resumefit/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
	// maxFileSize rejects oversized input files; 0 disables the limit
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if fp.maxFileSize > 0 {
			if info, err := os.Stat(filename); err == nil && info.Size() > fp.maxFileSize {
				return nil, errors.NewValidationError("FILE_TOO_LARGE",
					fmt.Sprintf("File %s is %s, exceeding the %s limit", filename,
						utils.FormatFileSize(info.Size()), utils.FormatFileSize(fp.maxFileSize)), nil)
			}
		}

		if !utils.IsTextFile(filename) {
			if fp.logger != nil {
				fp.logger.Warn("File may not be a text file",
					"filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s may not be a text file\n", filename)
			}
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err // Error already wrapped by ReadFile
		}

		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}

// ParseResume decodes a structured resume document from JSON and checks its
// minimum shape
func ParseResume(content string) (types.Resume, error) {
	var resume types.Resume
	if err := json.Unmarshal([]byte(content), &resume); err != nil {
		return types.Resume{}, errors.NewValidationError(errors.ErrCodeInvalidResume,
			"Resume file is not valid JSON", err)
	}
	if resume.PersonalInfo.Name == "" {
		return types.Resume{}, errors.NewValidationError(errors.ErrCodeInvalidResume,
			"Resume is missing personalInfo.name", nil)
	}
	if len(resume.Experience) == 0 {
		return types.Resume{}, errors.NewValidationError(errors.ErrCodeInvalidResume,
			"Resume has no experience entries", nil)
	}
	return resume, nil
}
