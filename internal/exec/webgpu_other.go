//go:build !windows

package exec

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

// webgpuDevice is empty on platforms without native WebGPU bindings.
type webgpuDevice struct{}

func (d *webgpuDevice) open(int) error {
	return errors.Wrapf(ErrBackendUnavailable, "webgpu: no native bindings for %s", runtime.GOOS)
}

func (d *webgpuDevice) alloc(int) (Buffer, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, "webgpu: device not open")
}

func (d *webgpuDevice) free(Buffer) (int, bool) { return 0, false }

func (d *webgpuDevice) upload(Buffer, []byte) error {
	return errors.Wrap(ErrBackendUnavailable, "webgpu: device not open")
}

func (d *webgpuDevice) download(Buffer, []byte) error {
	return errors.Wrap(ErrBackendUnavailable, "webgpu: device not open")
}

func (d *webgpuDevice) copyDevice(Buffer, Buffer, int) error {
	return errors.Wrap(ErrBackendUnavailable, "webgpu: device not open")
}

func (d *webgpuDevice) flush() error { return nil }

func (d *webgpuDevice) close() {}
