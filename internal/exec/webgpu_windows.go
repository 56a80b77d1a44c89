//go:build windows

package exec

import (
	"sync"
	"unsafe"

	"github.com/born-ml/linalg/internal/backend/webgpu"
	"github.com/cockroachdb/errors"
	"github.com/go-webgpu/webgpu/wgpu"
)

// DeviceBuffer is memory allocated on a WebGPU device.
type DeviceBuffer struct {
	buf      *wgpu.Buffer
	size     int
	capacity uint64
}

// Size implements Buffer.
func (b *DeviceBuffer) Size() int { return b.size }

type webgpuDevice struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	pool     *webgpu.BufferPool

	// Submissions are serialized; the queue is shared by all callers.
	mu sync.Mutex
}

func (d *webgpuDevice) open(deviceID int) (err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrBackendUnavailable, "webgpu: native library not available: %v", r)
		}
	}()

	preference := wgpu.PowerPreferenceHighPerformance
	if deviceID > 0 {
		preference = wgpu.PowerPreferenceLowPower
	}

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: preference,
	})
	if adapterErr != nil {
		instance.Release()
		return errors.Wrapf(ErrBackendUnavailable, "webgpu: failed to request adapter: %v", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return errors.Wrapf(ErrBackendUnavailable, "webgpu: failed to request device: %v", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return errors.Wrap(ErrBackendUnavailable, "webgpu: failed to get queue")
	}

	d.instance = instance
	d.adapter = adapter
	d.device = device
	d.queue = queue
	d.pool = webgpu.NewBufferPool(device)
	return nil
}

func (d *webgpuDevice) alloc(nbytes int) (Buffer, error) {
	if d.device == nil {
		return nil, errors.Wrap(ErrBackendUnavailable, "webgpu: device not open")
	}
	if nbytes == 0 {
		return &DeviceBuffer{}, nil
	}
	buf, capacity := d.pool.Acquire(uint64(nbytes))
	if buf == nil {
		return nil, errors.Newf("device refused %d byte buffer", capacity)
	}
	return &DeviceBuffer{buf: buf, size: nbytes, capacity: capacity}, nil
}

func (d *webgpuDevice) free(b Buffer) (int, bool) {
	db, ok := b.(*DeviceBuffer)
	if !ok || db.buf == nil {
		return 0, false
	}
	d.pool.Release(db.buf, db.capacity)
	n := db.size
	db.buf = nil
	db.size = 0
	return n, true
}

func deviceBuffer(b Buffer) (*DeviceBuffer, error) {
	db, ok := b.(*DeviceBuffer)
	if !ok || db.buf == nil {
		return nil, errors.Wrap(ErrForeignBuffer, "webgpu")
	}
	return db, nil
}

// upload copies data into dst through a mapped staging buffer.
func (d *webgpuDevice) upload(dst Buffer, data []byte) error {
	db, err := deviceBuffer(dst)
	if err != nil {
		return err
	}
	size := webgpu.Align(uint64(len(data)))

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	staging.Unmap()

	d.mu.Lock()
	defer d.mu.Unlock()
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, db.buf, 0, size)
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// download reads len(out) bytes of src back to host memory.
func (d *webgpuDevice) download(src Buffer, out []byte) error {
	db, err := deviceBuffer(src)
	if err != nil {
		return err
	}
	size := webgpu.Align(uint64(len(out)))

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	d.mu.Lock()
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(db.buf, 0, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))
	d.mu.Unlock()

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		return errors.Wrap(err, "webgpu: failed to map staging buffer")
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(out, mappedSlice)
	staging.Unmap()
	return nil
}

func (d *webgpuDevice) copyDevice(src, dst Buffer, nbytes int) error {
	s, err := deviceBuffer(src)
	if err != nil {
		return err
	}
	t, err := deviceBuffer(dst)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(s.buf, 0, t.buf, 0, webgpu.Align(uint64(nbytes)))
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// flush waits for submitted work by mapping a one-word staging buffer,
// which completes only after every earlier submission.
func (d *webgpuDevice) flush() error {
	if d.device == nil {
		return nil
	}
	fence := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  webgpu.CopyAlignment,
	})
	defer fence.Release()
	if err := fence.MapAsync(d.device, wgpu.MapModeRead, 0, webgpu.CopyAlignment); err != nil {
		return errors.Wrap(err, "webgpu: synchronize")
	}
	fence.Unmap()
	return nil
}

func (d *webgpuDevice) close() {
	if d.pool != nil {
		d.pool.Clear()
		d.pool = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
