//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/physlab/internal/bridge"
)

// main registers physlabRun(requestJSON) -> responseJSON on the global
// object and blocks so the callbacks stay alive.
func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	h := bridge.NewHandler(logrus.NewEntry(log))

	run := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) != 1 || args[0].Type() != js.TypeString {
			return string(h.HandleJSON(context.Background(), []byte(`null`)))
		}
		return string(h.HandleJSON(context.Background(), []byte(args[0].String())))
	})
	defer run.Release()

	js.Global().Set("physlabRun", run)
	select {}
}
