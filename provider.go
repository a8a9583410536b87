package tileraster

import "github.com/gogpu/gpucontext"

// NewWithProvider creates a GPU pipeline that runs on the device of a host
// application. The provider must also expose its HAL device and queue
// through HalDevice() any and HalQueue() any; the pipeline never destroys
// them.
//
// Example with a gogpu application:
//
//	p := tileraster.NewWithProvider(app.GPUContextProvider())
//	if err := p.Init(w, h, 1); err != nil {
//	    return err
//	}
func NewWithProvider(provider gpucontext.DeviceProvider, opts ...Option) *Pipeline {
	opts = append(opts, func(o *options) {
		o.provider = provider
		o.backend = BackendGPU
	})
	return New(opts...)
}
