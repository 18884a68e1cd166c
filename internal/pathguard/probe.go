package pathguard

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const probeOp = "PathPolicy.ProbeWritable"

// probeWritable 目录必须存在、是目录，并且允许创建+删除一个唯一命名的标记文件。
// 标记文件在所有退出路径上都会尝试删除，删除错误被忽略，不覆盖原始校验错误。
func probeWritable(dir string) error {
	info, err := os.Stat(filepath.Clean(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return notFound(probeOp, "export directory does not exist")
	case err != nil:
		return forbidden(probeOp, CodeUnwritable, "export directory is not accessible")
	case !info.IsDir():
		return invalid(probeOp, CodeNotADirectory, "export path is not a directory")
	}

	marker := filepath.Join(dir, ".spool_path_test_"+strings.ReplaceAll(uuid.NewString(), "-", "")+".tmp")
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return forbidden(probeOp, CodeUnwritable, "no write permission on the selected directory")
	}
	defer func() { _ = os.Remove(marker) }()

	_, werr := f.WriteString("ok")
	cerr := f.Close()
	if werr != nil || cerr != nil {
		return forbidden(probeOp, CodeUnwritable, "no write permission on the selected directory")
	}
	return nil
}
