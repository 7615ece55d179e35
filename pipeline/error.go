package pipeline

import (
	"fmt"
	"strings"
)

// Code identifies one failure mode of the install pipeline. Codes are a
// stable contract: the numeric value doubles as the process exit code
// and is never renumbered or reused. Callers key behavior off the code,
// not the message text.
type Code int

const (
	// CodeTargetNotFound - target directory does not exist.
	CodeTargetNotFound Code = iota + 1
	// CodeNotADirectory - target is not a directory.
	CodeNotADirectory
	// CodeNotWritable - target directory not writable.
	CodeNotWritable
	// CodeRootfsNotFound - rootfs image not found.
	CodeRootfsNotFound
	// CodeExtractionFailed - extraction command failed.
	CodeExtractionFailed
	// CodeVerificationFailed - extracted system verification failed.
	CodeVerificationFailed
	// CodeToolNotInstalled - required extraction tool not installed.
	CodeToolNotInstalled
	// CodeNotRoot - must run as root.
	CodeNotRoot
	// CodeTargetNotEmpty - target directory not empty.
	CodeTargetNotEmpty
	// CodeProtectedPath - target is a protected system path.
	CodeProtectedPath
	// CodeNotMountPoint - target is not a mount point.
	CodeNotMountPoint
	// CodeInsufficientSpace - insufficient disk space.
	CodeInsufficientSpace
	// CodeRootfsNotFile - rootfs is not a regular file.
	CodeRootfsNotFile
	// CodeRootfsNotReadable - rootfs is not readable.
	CodeRootfsNotReadable
	// CodeRootfsInsideTarget - rootfs lives inside the target directory.
	CodeRootfsInsideTarget
	// CodeInvalidRootfsFormat - rootfs format is invalid or unsupported.
	CodeInvalidRootfsFormat
	// CodeErofsNotSupported - kernel cannot mount EROFS.
	CodeErofsNotSupported
)

func (c Code) String() string {
	return fmt.Sprintf("E%03d", int(c))
}

// ExitCode is the process exit status for this failure.
func (c Code) ExitCode() int {
	return int(c)
}

// Error is a pipeline failure bound to its taxonomy code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Message
}

// NewError builds a typed pipeline error with a formatted message.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func ErrTargetNotFound(path string) *Error {
	return NewError(CodeTargetNotFound,
		"target directory '%s' does not exist", path)
}

func ErrNotADirectory(path string) *Error {
	return NewError(CodeNotADirectory,
		"'%s' is not a directory", path)
}

func ErrNotWritable(path string) *Error {
	return NewError(CodeNotWritable,
		"target directory '%s' is not writable (are you root?)", path)
}

func ErrRootfsNotFound(tried []string) *Error {
	return NewError(CodeRootfsNotFound,
		"rootfs not found (tried: %s) - make sure you are running from the live ISO or pass --rootfs",
		strings.Join(tried, ", "))
}

// ErrExtractionFailed carries whatever detail the failing tool left
// behind; with nothing to go on it points the operator at dmesg.
func ErrExtractionFailed(detail string) *Error {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = "unknown error (check dmesg for details)"
	}

	return NewError(CodeExtractionFailed, "extraction failed: %s", detail)
}

func ErrVerificationFailed(missing []string) *Error {
	return NewError(CodeVerificationFailed,
		"extraction verification failed - missing directories: %s",
		strings.Join(missing, ", "))
}

func ErrToolNotInstalled(tool, hint string) *Error {
	return NewError(CodeToolNotInstalled,
		"%s not found in PATH (%s)", tool, hint)
}

func ErrNotRoot() *Error {
	return NewError(CodeNotRoot, "must run as root")
}

func ErrTargetNotEmpty(path string) *Error {
	return NewError(CodeTargetNotEmpty,
		"target directory '%s' is not empty (use --force to override)", path)
}

func ErrProtectedPath(path string) *Error {
	return NewError(CodeProtectedPath,
		"refusing to extract to protected system path '%s' - use a mount point like /mnt", path)
}

func ErrNotMountPoint(path string) *Error {
	return NewError(CodeNotMountPoint,
		"'%s' is not a mount point - did you forget to mount? (use --force to override)", path)
}

func ErrInsufficientSpace(requiredMB, availableMB uint64) *Error {
	return NewError(CodeInsufficientSpace,
		"insufficient disk space: need ~%dMB, have %dMB", requiredMB, availableMB)
}

func ErrRootfsNotFile(path string) *Error {
	return NewError(CodeRootfsNotFile,
		"'%s' is not a regular file", path)
}

func ErrRootfsNotReadable(path string) *Error {
	return NewError(CodeRootfsNotReadable,
		"cannot read rootfs '%s' (permission denied?)", path)
}

func ErrRootfsInsideTarget(rootfsPath, target string) *Error {
	return NewError(CodeRootfsInsideTarget,
		"rootfs '%s' is inside target '%s' - this would cause recursive extraction",
		rootfsPath, target)
}

func ErrInvalidRootfsFormat(path, detail string) *Error {
	return NewError(CodeInvalidRootfsFormat,
		"'%s' is not a valid rootfs image: %s", path, detail)
}

func ErrErofsNotSupported() *Error {
	return NewError(CodeErofsNotSupported,
		"EROFS filesystem not supported by kernel (try: modprobe erofs)")
}
