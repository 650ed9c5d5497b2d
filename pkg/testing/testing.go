package testing

import (
	"os"
	"path"
	"runtime"
)

// Importing this package for side effects moves the test process to the
// project root, so logs/ and .env resolve the same way they do for the server:
//
//	import (
//	  _ "liyu1981.xyz/energy-opdb-service/pkg/testing"
//	)
func init() {
	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
}
