package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/remeh/sizedwaitgroup"
)

// Run starts f once wg has room for it. A panic in f is a bug in this
// program, so it is logged with its stack and the process exits.
func Run(wg *sizedwaitgroup.SizedWaitGroup, f func()) {
	wg.Add()
	go func() {
		defer wg.Done()
		defer Recover()
		f()
	}()
}

func Recover() {
	if r := recover(); r != nil {
		HandlePanic(r)
	}
}

func HandlePanic(p any) {
	defer os.Exit(1)

	buf := make([]byte, 100000)
	n := runtime.Stack(buf, false)

	slog.Error("panic", "value", fmt.Sprint(p), "stack", string(buf[:n]))
}
