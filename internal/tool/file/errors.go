package file

import "errors"

var (
	ErrPathRequired    = errors.New("path is required")
	ErrFileMissing     = errors.New("file does not exist")
	ErrFileExists      = errors.New("file already exists, use update_file to change it")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrBinaryFile      = errors.New("file is binary")
	ErrFileTooLarge    = errors.New("file too large")
	ErrTargetRequired  = errors.New("target is required")
	ErrTargetNotFound  = errors.New("target text not found")
	ErrTargetAmbiguous = errors.New("target text matches more than once")
	ErrOutsideDenied   = errors.New("write outside the working directory denied")
	ErrInvalidRange    = errors.New("offset and limit must be >= 0")
)
