//go:build js && wasm

// Command wasmcodec compiles internal/codec and internal/cryptoprim to a
// GOOS=js/GOARCH=wasm artifact that the browser's decrypt and upload
// workers load (spec §4.5, §9 "Shared codec between server and browser").
// It exposes a small JS-facing surface under the global `deadropCodec`;
// everything past that boundary is the same Go code the server links
// natively, so the wire format in spec §3 cannot drift between the two.
package main

import (
	"bytes"
	"crypto/rand"
	"io"
	"syscall/js"

	"github.com/Karmanya03/Deadrop/internal/codec"
	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
)

func main() {
	deadropCodec := js.Global().Get("Object").New()
	deadropCodec.Set("argon2id", js.FuncOf(argon2id))
	deadropCodec.Set("newDecoder", js.FuncOf(newDecoder))
	deadropCodec.Set("newEncoder", js.FuncOf(newEncoder))
	js.Global().Set("deadropCodec", deadropCodec)

	// Keep the program alive; every call above is driven by callbacks from
	// the JS event loop, there is nothing further for main to do.
	select {}
}

func bytesFromJS(v js.Value) []byte {
	out := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(out, v)
	return out
}

func bytesToJS(b []byte) js.Value {
	out := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(out, b)
	return out
}

func newPromise(fn func() (js.Value, error)) js.Value {
	handler := js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		resolve, reject := args[0], args[1]
		go func() {
			result, err := fn()
			if err != nil {
				reject.Invoke(err.Error())
				return
			}
			resolve.Invoke(result)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

// argon2id(password, salt) -> Promise<Uint8Array>, mirroring
// cryptoprim.DeriveKey so password-mode drops derive identical keys on the
// server and in this artifact (spec §4.1, §8 property 5).
func argon2id(_ js.Value, args []js.Value) interface{} {
	password := bytesFromJS(args[0])
	salt := bytesFromJS(args[1])
	return newPromise(func() (js.Value, error) {
		key, err := cryptoprim.DeriveKey(password, salt)
		if err != nil {
			return js.Value{}, err
		}
		return bytesToJS(key), nil
	})
}

// newDecoder(key, onChunk, onDone, onError) -> {push(bytes), close()}.
// Decoding runs on its own goroutine reading from an io.Pipe; JS feeds
// bytes in as they arrive from the network with push, and the goroutine
// invokes onChunk for every authenticated plaintext chunk in order, then
// onDone or onError exactly once.
func newDecoder(_ js.Value, args []js.Value) interface{} {
	key := bytesFromJS(args[0])
	onChunk, onDone, onError := args[1], args[2], args[3]

	pr, pw := io.Pipe()
	go func() {
		err := codec.Decode(pr, key, codec.KnownLength{}, func(chunk []byte) error {
			onChunk.Invoke(bytesToJS(chunk))
			return nil
		})
		pr.Close()
		if err != nil {
			onError.Invoke(err.Error())
			return
		}
		onDone.Invoke()
	}()

	handle := js.Global().Get("Object").New()
	handle.Set("push", js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		data := bytesFromJS(args[0])
		go func() { _, _ = pw.Write(data) }()
		return nil
	}))
	handle.Set("close", js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
		_ = pw.Close()
		return nil
	}))
	return handle
}

// newEncoder(key) -> {encodeAll(plaintext) -> Uint8Array}. The whole file is
// already in memory on the upload path (spec §4.4), so encoding runs
// synchronously against a bytes.Buffer rather than needing a pipe.
func newEncoder(_ js.Value, args []js.Value) interface{} {
	key := bytesFromJS(args[0])

	handle := js.Global().Get("Object").New()
	handle.Set("encodeAll", js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		plaintext := bytesFromJS(args[0])

		baseNonce := make([]byte, cryptoprim.NonceSize)
		if _, err := rand.Read(baseNonce); err != nil {
			panic(err) // no sane fallback: without entropy the drop cannot be encoded safely
		}

		var out bytes.Buffer
		if err := codec.EncodeKnownSize(&out, bytes.NewReader(plaintext), key, baseNonce, int64(len(plaintext))); err != nil {
			panic(err)
		}
		return bytesToJS(out.Bytes())
	}))
	return handle
}
