package util

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func Warnf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Warning prints err, prefixed by an optional format string and its
// arguments, and returns true if err is not nil.
func Warning(err error, v ...interface{}) bool {
	if err == nil {
		return false
	}
	Warnf("%s", message("WARNING", err, v))
	return true
}

func Fatalf(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

// Assert quits the program with a message if err is not nil. The message is
// built like the message of Warning.
func Assert(err error, v ...interface{}) {
	if err != nil {
		Fatalf("%s", message("ERROR", err, v))
	}
}

func message(level string, err error, v []interface{}) string {
	if len(v) == 0 {
		return fmt.Sprintf("%s: %s.", level, err)
	}
	format := v[0].(string)
	return fmt.Sprintf("%s: %s.", fmt.Sprintf(format, v[1:]...), err)
}

func AssertNArg(n int) {
	if flag.NArg() != n {
		log.Printf("Expected %d arguments but got %d.\n", n, flag.NArg())
		flag.Usage()
	}
}

func AssertLeastNArg(n int) {
	if flag.NArg() < n {
		log.Printf("Expected at least %d arguments but got %d.\n",
			n, flag.NArg())
		flag.Usage()
	}
}

func AssertIsDir(path string) {
	info, err := os.Stat(path)
	Assert(err, "Directory '%s' is not accessible", path)
	if !info.IsDir() {
		Fatalf("'%s' is not a directory.", path)
	}
}
