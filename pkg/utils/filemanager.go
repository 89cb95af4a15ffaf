// =============================================================================
// Price Export - File Manager Utility
// =============================================================================
//
// This module provides the file handling around an export:
//   - Directory management
//   - Backup rotation (moving the previous output aside)
//   - Atomic replacement of the output file
//
// BACKUP STRATEGY:
//   - An existing output file is renamed to prices_backup_<unix-timestamp>.csv
//     (.xlsx for workbooks) in the same directory
//   - The timestamp is the run start, captured once per run
//   - Nothing happens when there is no previous output file
//
// WRITE STRATEGY:
//   1. Output is written to a temporary file next to the destination
//   2. Only then is the previous output moved to its backup name
//   3. The temporary file is renamed over the destination
//
// A failed write leaves the previous output where it was.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BackupPrefix starts the name of every backup file.
const BackupPrefix = "prices_backup_"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the output file of one run.
type FileManager struct {
	// Destination is the path of the output file.
	Destination string

	// KeepBackups moves an existing destination aside before writing.
	KeepBackups bool

	// RunStart names the backup file. Set once per run.
	RunStart time.Time
}

// NewFileManager creates a FileManager for destination.
func NewFileManager(destination string, keepBackups bool, runStart time.Time) *FileManager {
	return &FileManager{
		Destination: destination,
		KeepBackups: keepBackups,
		RunStart:    runStart,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the destination directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	dir := filepath.Dir(fm.Destination)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// BACKUP ROTATION
// =============================================================================

// BackupPath returns where the current destination would be moved.
//
// EXAMPLE:
//   destination: data/prices.csv, run start 1700000000
//   output:      data/prices_backup_1700000000.csv
//
// Workbooks keep .xlsx; every other destination is backed up as .csv.
func (fm *FileManager) BackupPath() string {
	ext := ".csv"
	if strings.EqualFold(filepath.Ext(fm.Destination), ".xlsx") {
		ext = ".xlsx"
	}
	name := BackupPrefix + strconv.FormatInt(fm.RunStart.Unix(), 10) + ext
	return filepath.Join(filepath.Dir(fm.Destination), name)
}

// Backup moves an existing destination to BackupPath.
//
// RETURNS:
//   - The backup path, or "" when nothing was moved (backups disabled or no
//     previous output).
//   - An error if the move fails.
//
// NOTE: Two runs started within the same second share a backup name; the
// second rename replaces the first backup.
func (fm *FileManager) Backup() (string, error) {
	if !fm.KeepBackups || !FileExists(fm.Destination) {
		return "", nil
	}

	backupPath := fm.BackupPath()

	if err := os.Rename(fm.Destination, backupPath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(fm.Destination, backupPath); err != nil {
			return "", fmt.Errorf("failed to copy %s to backup: %w", fm.Destination, err)
		}
		if err := os.Remove(fm.Destination); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return backupPath, nil
}

// =============================================================================
// ATOMIC WRITE
// =============================================================================

// WriteAtomic writes the destination through write.
//
// write receives a temporary file in the destination directory. When it
// returns nil the file is synced and closed, the previous output is backed
// up (see Backup), and the temporary file is renamed over the destination.
// On any error the temporary file is removed and the previous output is
// left at the destination.
//
// RETURNS:
//   - The backup path, or "" when nothing was backed up.
//   - An error if writing, backing up or renaming fails.
func (fm *FileManager) WriteAtomic(write func(w io.Writer) error) (backup string, err error) {
	dir := filepath.Dir(fm.Destination)
	tmpPath := filepath.Join(dir, "."+filepath.Base(fm.Destination)+"."+uuid.NewString()+".tmp")

	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if backup, err = fm.Backup(); err != nil {
		return "", fmt.Errorf("failed to back up previous output: %w", err)
	}

	if err = os.Rename(tmpPath, fm.Destination); err != nil {
		if backup != "" {
			// put the previous output back
			os.Rename(backup, fm.Destination)
		}
		return "", fmt.Errorf("failed to move output into place: %w", err)
	}
	return backup, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
