package ui

import (
	"os"
	"path/filepath"
)

// isDirEmpty は指定フォルダが空（ファイル・サブフォルダが無い）場合に true を返します。
func isDirEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true // 読めない場合は空とみなす
	}
	return len(entries) == 0
}

// emptyDir は指定フォルダ内のすべてのファイルとサブフォルダを削除します。フォルダ自体は削除しません。
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
