//go:build windows

package hds

import "os"

// osReplace: Windows 上 os.Rename 以 MoveFileEx(REPLACE_EXISTING) 实现替换。
func osReplace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir: Windows 不支持目录 fsync。
func syncDir(string) error { return nil }
