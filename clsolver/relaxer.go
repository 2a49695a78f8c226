//go:build opencl

package clsolver

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/pthm-cable/stablefluids/fluid"
)

const jacobiKernelSource = `__kernel void jacobi(
    const int sx,
    const int sy,
    const int sz,
    const int rank,
    const float a,
    const float c,
    __global const float* prev,
    __global const float* x0,
    __global float* out)
{
    int idx = get_global_id(0);
    if (idx >= sx * sy * sz) {
        return;
    }
    int i = idx % sx;
    int j = (idx / sx) % sy;
    int k = idx / (sx * sy);
    if (i < 1 || i > sx - 2 || j < 1 || j > sy - 2) {
        return;
    }
    float sum = prev[idx - 1] + prev[idx + 1] + prev[idx - sx] + prev[idx + sx];
    if (rank == 3) {
        if (k < 1 || k > sz - 2) {
            return;
        }
        int sxy = sx * sy;
        sum += prev[idx - sxy] + prev[idx + sxy];
    }
    out[idx] = (x0[idx] + a * sum) / c;
}`

// Relaxer implements fluid.Relaxer with an OpenCL Jacobi kernel. The
// interior sweep runs on the device; halo cells are filled on the host with
// fluid.ApplyBoundary after each sweep so results match the CPU path.
type Relaxer struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	prevBuf *cl.MemObject
	x0Buf   *cl.MemObject
	outBuf  *cl.MemObject
	length  int

	deviceName string
}

// New picks the first GPU (or CPU) device and compiles the kernel.
func New() (*Relaxer, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}

	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	r := &Relaxer{deviceName: device.Name()}
	if r.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if r.queue, err = r.context.CreateCommandQueue(device, 0); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if r.program, err = r.context.CreateProgramWithSource([]string{jacobiKernelSource}); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := r.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		r.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if r.kernel, err = r.program.CreateKernel("jacobi"); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return r, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// DeviceName reports the selected device.
func (r *Relaxer) DeviceName() string { return r.deviceName }

// Relax runs iterations Jacobi sweeps of x = (x0 + a*sum(neighbours)) / c.
func (r *Relaxer) Relax(x, x0 *fluid.Field, a, c float32, kinds fluid.AxisKinds, iterations int) error {
	if err := r.ensureBuffers(x.Len()); err != nil {
		return err
	}

	x.CopyFrom(x0)
	if _, err := r.queue.EnqueueWriteBufferFloat32(r.x0Buf, true, 0, x0.Data(), nil); err != nil {
		return fmt.Errorf("writing source buffer: %w", err)
	}
	if err := r.kernel.SetArgs(
		int32(x.Size(0)),
		int32(x.Size(1)),
		int32(x.Size(2)),
		int32(x.Rank()),
		a,
		c,
		r.prevBuf,
		r.x0Buf,
		r.outBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}

	global := []int{x.Len()}
	for it := 0; it < iterations; it++ {
		// outBuf halos are never written by the kernel, so seed it with the
		// current state before the sweep.
		if _, err := r.queue.EnqueueWriteBufferFloat32(r.prevBuf, true, 0, x.Data(), nil); err != nil {
			return fmt.Errorf("writing previous buffer: %w", err)
		}
		if _, err := r.queue.EnqueueWriteBufferFloat32(r.outBuf, true, 0, x.Data(), nil); err != nil {
			return fmt.Errorf("writing output buffer: %w", err)
		}
		if _, err := r.queue.EnqueueNDRangeKernel(r.kernel, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing kernel: %w", err)
		}
		if _, err := r.queue.EnqueueReadBufferFloat32(r.outBuf, true, 0, x.Data(), nil); err != nil {
			return fmt.Errorf("reading output buffer: %w", err)
		}
		fluid.ApplyBoundary(x, kinds)
	}
	return nil
}

func (r *Relaxer) ensureBuffers(n int) error {
	if n == r.length && r.outBuf != nil {
		return nil
	}
	r.releaseBuffers()

	byteSize := n * int(unsafe.Sizeof(float32(0)))
	var err error
	if r.prevBuf, err = r.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating previous buffer: %w", err)
	}
	if r.x0Buf, err = r.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		r.releaseBuffers()
		return fmt.Errorf("allocating source buffer: %w", err)
	}
	if r.outBuf, err = r.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
		r.releaseBuffers()
		return fmt.Errorf("allocating output buffer: %w", err)
	}
	r.length = n
	return nil
}

func (r *Relaxer) releaseBuffers() {
	for _, b := range []**cl.MemObject{&r.prevBuf, &r.x0Buf, &r.outBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	r.length = 0
}

// Close releases all device resources.
func (r *Relaxer) Close() {
	r.releaseBuffers()
	if r.kernel != nil {
		r.kernel.Release()
		r.kernel = nil
	}
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.context != nil {
		r.context.Release()
		r.context = nil
	}
}
