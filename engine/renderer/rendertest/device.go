// Package rendertest provides an in-memory renderer.Device and
// renderer.Window for exercising the frame lifecycle without a GPU.
package rendertest

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/containers"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

type object struct {
	kind   string
	data   []byte
	images []renderer.Handle
	info   renderer.SwapchainCreateInfo
	// For views: the kind of image viewed.
	viewOf string
	// For descriptor sets: the owning pool.
	pool renderer.Handle
}

// Device records every call and answers from scripted results. GPU work
// completes when its fence is waited on or the device is idled.
type Device struct {
	Families     renderer.QueueFamilyIndices
	Support      renderer.ChainSupport
	DepthFormats map[renderer.Format]bool

	// Consumed one per call. An empty queue answers ResultSuccess.
	AcquireResults []renderer.Result
	PresentResults []renderer.Result
	SubmitResults  []renderer.Result
	FenceResults   []renderer.Result

	// FailOn makes the named method return the error once.
	FailOn map[string]error

	// OnMap runs on every MapBuffer.
	OnMap func(buffer renderer.Handle)

	Calls    []string
	Submits  []renderer.SubmitInfo
	Recorded map[renderer.Handle][]string
	// Errors collects misuse: stale handles, double frees, waits on
	// unknown fences.
	Errors []string

	objects   *containers.HandleTable[*object]
	signaled  map[renderer.Handle]bool
	nextImage uint32
	swapchain renderer.Handle
}

// NewDevice returns a device with one queue family, a mailbox-capable
// surface of 1280x720 allowing 2 to 8 images, and every depth format.
func NewDevice() *Device {
	return &Device{
		Support: renderer.ChainSupport{
			Capabilities: renderer.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  8,
				CurrentExtent:  renderer.Extent2D{Width: 1280, Height: 720},
				MinImageExtent: renderer.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: renderer.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []renderer.SurfaceFormat{
				{Format: renderer.FormatB8G8R8A8Srgb, ColorSpace: renderer.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []renderer.PresentMode{renderer.PresentModeFifo, renderer.PresentModeMailbox},
		},
		DepthFormats: map[renderer.Format]bool{
			renderer.FormatD32Sfloat:       true,
			renderer.FormatD32SfloatS8Uint: true,
			renderer.FormatD24UnormS8Uint:  true,
		},
		FailOn:   make(map[string]error),
		Recorded: make(map[renderer.Handle][]string),
		objects:  containers.NewHandleTable[*object](64),
		signaled: make(map[renderer.Handle]bool),
	}
}

func (d *Device) call(name string) error {
	d.Calls = append(d.Calls, name)
	if err, ok := d.FailOn[name]; ok {
		delete(d.FailOn, name)
		return err
	}
	return nil
}

func (d *Device) misuse(format string, args ...interface{}) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

func (d *Device) create(name, kind string) (renderer.Handle, error) {
	if err := d.call(name); err != nil {
		return renderer.NullHandle, err
	}
	return d.objects.Insert(&object{kind: kind}), nil
}

func (d *Device) get(h renderer.Handle, kind string) *object {
	obj, ok := d.objects.Get(h)
	if !ok || obj.kind != kind {
		d.misuse("stale or wrong %s handle %s", kind, h)
		return nil
	}
	return obj
}

func (d *Device) destroy(name string, h renderer.Handle, kind string) {
	d.Calls = append(d.Calls, name)
	obj, ok := d.objects.Get(h)
	if !ok || obj.kind != kind {
		d.misuse("%s on stale or wrong handle %s", name, h)
		return
	}
	d.objects.Remove(h)
}

// Live counts the objects of a kind that exist. An empty kind counts all.
func (d *Device) Live(kind string) int {
	n := 0
	d.objects.Each(func(_ renderer.Handle, obj *object) {
		if kind == "" || obj.kind == kind {
			n++
		}
	})
	return n
}

// LiveKinds lists every object still alive, for leak reports.
func (d *Device) LiveKinds() map[string]int {
	kinds := make(map[string]int)
	d.objects.Each(func(_ renderer.Handle, obj *object) {
		kinds[obj.kind]++
	})
	return kinds
}

func (d *Device) FenceSignaled(fence renderer.Handle) bool {
	return d.signaled[fence]
}

// Count returns how many times a call was made.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls and submissions.
func (d *Device) ResetCalls() {
	d.Calls = nil
	d.Submits = nil
}

func pop(queue *[]renderer.Result) renderer.Result {
	if len(*queue) == 0 {
		return renderer.ResultSuccess
	}
	r := (*queue)[0]
	*queue = (*queue)[1:]
	return r
}

// Surface

func (d *Device) QueueFamilies() renderer.QueueFamilyIndices {
	return d.Families
}

func (d *Device) QueryChainSupport() (renderer.ChainSupport, error) {
	if err := d.call("QueryChainSupport"); err != nil {
		return renderer.ChainSupport{}, err
	}
	return d.Support, nil
}

func (d *Device) DepthFormatSupported(f renderer.Format) bool {
	return d.DepthFormats[f]
}

func (d *Device) CreateSwapchain(info renderer.SwapchainCreateInfo) (renderer.Handle, error) {
	h, err := d.create("CreateSwapchain", "swapchain")
	if err != nil {
		return h, err
	}
	sc, _ := d.objects.Get(h)
	sc.info = info
	for i := uint32(0); i < info.MinImageCount; i++ {
		sc.images = append(sc.images, d.objects.Insert(&object{kind: "swapchain-image"}))
	}
	d.swapchain = h
	d.nextImage = 0
	return h, nil
}

// SwapchainInfo is what the last swapchain was created with.
func (d *Device) SwapchainInfo() renderer.SwapchainCreateInfo {
	if sc, ok := d.objects.Get(d.swapchain); ok {
		return sc.info
	}
	return renderer.SwapchainCreateInfo{}
}

func (d *Device) SwapchainImages(swapchain renderer.Handle) ([]renderer.Handle, error) {
	if err := d.call("SwapchainImages"); err != nil {
		return nil, err
	}
	sc := d.get(swapchain, "swapchain")
	if sc == nil {
		return nil, errors.New("unknown swapchain")
	}
	return append([]renderer.Handle(nil), sc.images...), nil
}

func (d *Device) DestroySwapchain(swapchain renderer.Handle) {
	if sc, ok := d.objects.Get(swapchain); ok && sc.kind == "swapchain" {
		for _, img := range sc.images {
			d.objects.Remove(img)
		}
	}
	d.destroy("DestroySwapchain", swapchain, "swapchain")
}

func (d *Device) CreateImageView(image renderer.Handle, format renderer.Format, aspect renderer.ImageAspect) (renderer.Handle, error) {
	img, ok := d.objects.Get(image)
	if !ok {
		d.misuse("view of stale image %s", image)
	}
	h, err := d.create("CreateImageView", "image-view")
	if err != nil {
		return h, err
	}
	view, _ := d.objects.Get(h)
	if img != nil {
		view.viewOf = img.kind
	}
	return h, nil
}

func (d *Device) DestroyImageView(view renderer.Handle) {
	name := "DestroyImageView"
	if obj, ok := d.objects.Get(view); ok {
		name += ":" + obj.viewOf
	}
	d.destroy(name, view, "image-view")
}

func (d *Device) AcquireNextImage(swapchain renderer.Handle, timeoutNS uint64, signal renderer.Handle) (uint32, renderer.Result) {
	d.Calls = append(d.Calls, "AcquireNextImage")
	sc := d.get(swapchain, "swapchain")
	d.get(signal, "semaphore")
	res := pop(&d.AcquireResults)
	if !res.IsSuccess() {
		return 0, res
	}
	if sc == nil || len(sc.images) == 0 {
		return 0, renderer.ResultSurfaceLost
	}
	idx := d.nextImage
	d.nextImage = (d.nextImage + 1) % uint32(len(sc.images))
	return idx, res
}

func (d *Device) Present(swapchain renderer.Handle, imageIndex uint32, wait renderer.Handle) renderer.Result {
	d.Calls = append(d.Calls, "Present")
	d.get(swapchain, "swapchain")
	d.get(wait, "semaphore")
	return pop(&d.PresentResults)
}

func (d *Device) WaitIdle() renderer.Result {
	d.Calls = append(d.Calls, "WaitIdle")
	for fence := range d.signaled {
		d.signaled[fence] = true
	}
	return renderer.ResultSuccess
}

// Sync

func (d *Device) CreateSemaphore() (renderer.Handle, error) {
	return d.create("CreateSemaphore", "semaphore")
}

func (d *Device) DestroySemaphore(semaphore renderer.Handle) {
	d.destroy("DestroySemaphore", semaphore, "semaphore")
}

func (d *Device) CreateFence(signaled bool) (renderer.Handle, error) {
	h, err := d.create("CreateFence", "fence")
	if err == nil {
		d.signaled[h] = signaled
	}
	return h, err
}

func (d *Device) DestroyFence(fence renderer.Handle) {
	delete(d.signaled, fence)
	d.destroy("DestroyFence", fence, "fence")
}

func (d *Device) WaitForFence(fence renderer.Handle, timeoutNS uint64) renderer.Result {
	d.Calls = append(d.Calls, "WaitForFence")
	if d.get(fence, "fence") == nil {
		return renderer.ResultDeviceLost
	}
	if res := pop(&d.FenceResults); res != renderer.ResultSuccess {
		return res
	}
	d.signaled[fence] = true
	return renderer.ResultSuccess
}

func (d *Device) ResetFence(fence renderer.Handle) renderer.Result {
	d.Calls = append(d.Calls, "ResetFence")
	if d.get(fence, "fence") == nil {
		return renderer.ResultDeviceLost
	}
	d.signaled[fence] = false
	return renderer.ResultSuccess
}

// Memory

func (d *Device) CreateBuffer(size uint64, usage renderer.BufferUsage, residency renderer.Residency) (renderer.Handle, error) {
	kind := "buffer"
	if residency == renderer.ResidencyStaging {
		kind = "staging-buffer"
	}
	h, err := d.create("CreateBuffer", kind)
	if err == nil {
		buf, _ := d.objects.Get(h)
		buf.data = make([]byte, size)
	}
	return h, err
}

func (d *Device) DestroyBuffer(buffer renderer.Handle) {
	if obj, ok := d.objects.Get(buffer); ok && obj.kind == "staging-buffer" {
		d.destroy("DestroyBuffer", buffer, "staging-buffer")
		return
	}
	d.destroy("DestroyBuffer", buffer, "buffer")
}

func (d *Device) MapBuffer(buffer renderer.Handle) ([]byte, error) {
	if err := d.call("MapBuffer"); err != nil {
		return nil, err
	}
	obj, ok := d.objects.Get(buffer)
	if !ok {
		d.misuse("map of stale buffer %s", buffer)
		return nil, errors.New("stale buffer")
	}
	if d.OnMap != nil {
		d.OnMap(buffer)
	}
	return obj.data, nil
}

func (d *Device) UnmapBuffer(buffer renderer.Handle) {
	d.Calls = append(d.Calls, "UnmapBuffer")
}

// BufferData returns the bytes last written to a buffer.
func (d *Device) BufferData(buffer renderer.Handle) []byte {
	if obj, ok := d.objects.Get(buffer); ok {
		return obj.data
	}
	return nil
}

func (d *Device) CreateImage(info renderer.ImageCreateInfo) (renderer.Handle, error) {
	return d.create("CreateImage", "image")
}

func (d *Device) DestroyImage(image renderer.Handle) {
	d.destroy("DestroyImage", image, "image")
}

func (d *Device) CreateSampler() (renderer.Handle, error) {
	return d.create("CreateSampler", "sampler")
}

func (d *Device) DestroySampler(sampler renderer.Handle) {
	d.destroy("DestroySampler", sampler, "sampler")
}

// Pipelines

func (d *Device) CreateRenderPass(color renderer.Format, depth renderer.Format) (renderer.Handle, error) {
	return d.create("CreateRenderPass", "render-pass")
}

func (d *Device) DestroyRenderPass(pass renderer.Handle) {
	d.destroy("DestroyRenderPass", pass, "render-pass")
}

func (d *Device) CreateFramebuffer(pass renderer.Handle, attachments []renderer.Handle, extent renderer.Extent2D) (renderer.Handle, error) {
	d.get(pass, "render-pass")
	for _, a := range attachments {
		d.get(a, "image-view")
	}
	return d.create("CreateFramebuffer", "framebuffer")
}

func (d *Device) DestroyFramebuffer(framebuffer renderer.Handle) {
	d.destroy("DestroyFramebuffer", framebuffer, "framebuffer")
}

func (d *Device) CreateShaderModule(code []uint32) (renderer.Handle, error) {
	return d.create("CreateShaderModule", "shader-module")
}

func (d *Device) DestroyShaderModule(module renderer.Handle) {
	d.destroy("DestroyShaderModule", module, "shader-module")
}

func (d *Device) CreateDescriptorSetLayout(bindings []renderer.DescriptorBinding) (renderer.Handle, error) {
	return d.create("CreateDescriptorSetLayout", "descriptor-set-layout")
}

func (d *Device) DestroyDescriptorSetLayout(layout renderer.Handle) {
	d.destroy("DestroyDescriptorSetLayout", layout, "descriptor-set-layout")
}

func (d *Device) CreateDescriptorPool(sizes []renderer.DescriptorPoolSize, maxSets uint32) (renderer.Handle, error) {
	return d.create("CreateDescriptorPool", "descriptor-pool")
}

func (d *Device) DestroyDescriptorPool(pool renderer.Handle) {
	var sets []renderer.Handle
	d.objects.Each(func(h renderer.Handle, obj *object) {
		if obj.kind == "descriptor-set" && obj.pool == pool {
			sets = append(sets, h)
		}
	})
	for _, s := range sets {
		d.objects.Remove(s)
	}
	d.destroy("DestroyDescriptorPool", pool, "descriptor-pool")
}

func (d *Device) AllocateDescriptorSets(pool renderer.Handle, layout renderer.Handle, count uint32) ([]renderer.Handle, error) {
	if err := d.call("AllocateDescriptorSets"); err != nil {
		return nil, err
	}
	d.get(pool, "descriptor-pool")
	d.get(layout, "descriptor-set-layout")
	sets := make([]renderer.Handle, count)
	for i := range sets {
		sets[i] = d.objects.Insert(&object{kind: "descriptor-set", pool: pool})
	}
	return sets, nil
}

func (d *Device) UpdateDescriptorSet(set renderer.Handle, writes []renderer.DescriptorWrite) {
	d.Calls = append(d.Calls, "UpdateDescriptorSet")
	d.get(set, "descriptor-set")
}

func (d *Device) CreateGraphicsPipeline(info renderer.PipelineCreateInfo) (renderer.Handle, renderer.Handle, error) {
	d.get(info.RenderPass, "render-pass")
	d.get(info.SetLayout, "descriptor-set-layout")
	pipeline, err := d.create("CreateGraphicsPipeline", "pipeline")
	if err != nil {
		return renderer.NullHandle, renderer.NullHandle, err
	}
	layout := d.objects.Insert(&object{kind: "pipeline-layout"})
	return pipeline, layout, nil
}

func (d *Device) DestroyPipeline(pipeline renderer.Handle, layout renderer.Handle) {
	d.destroy("DestroyPipeline", pipeline, "pipeline")
	d.objects.Remove(layout)
}

// Commands

func (d *Device) CreateCommandPool() (renderer.Handle, error) {
	return d.create("CreateCommandPool", "command-pool")
}

func (d *Device) DestroyCommandPool(pool renderer.Handle) {
	d.destroy("DestroyCommandPool", pool, "command-pool")
}

func (d *Device) AllocateCommandBuffers(pool renderer.Handle, count uint32) ([]renderer.Handle, error) {
	if err := d.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	d.get(pool, "command-pool")
	buffers := make([]renderer.Handle, count)
	for i := range buffers {
		buffers[i] = d.objects.Insert(&object{kind: "command-buffer"})
	}
	return buffers, nil
}

func (d *Device) FreeCommandBuffers(pool renderer.Handle, buffers []renderer.Handle) {
	for _, b := range buffers {
		delete(d.Recorded, b)
		d.destroy("FreeCommandBuffers", b, "command-buffer")
	}
}

func (d *Device) BeginCommandBuffer(buffer renderer.Handle, singleUse bool) error {
	if err := d.call("BeginCommandBuffer"); err != nil {
		return err
	}
	d.get(buffer, "command-buffer")
	d.Recorded[buffer] = nil
	return nil
}

func (d *Device) EndCommandBuffer(buffer renderer.Handle) error {
	return d.call("EndCommandBuffer")
}

func (d *Device) record(buffer renderer.Handle, op string) {
	if d.get(buffer, "command-buffer") != nil {
		d.Recorded[buffer] = append(d.Recorded[buffer], op)
	}
}

func (d *Device) CmdBeginRenderPass(buffer, pass, framebuffer renderer.Handle, extent renderer.Extent2D, clear renderer.ClearValues) {
	d.get(pass, "render-pass")
	d.get(framebuffer, "framebuffer")
	d.record(buffer, "BeginRenderPass")
}

func (d *Device) CmdEndRenderPass(buffer renderer.Handle) {
	d.record(buffer, "EndRenderPass")
}

func (d *Device) CmdSetViewportScissor(buffer renderer.Handle, extent renderer.Extent2D) {
	d.record(buffer, "SetViewportScissor")
}

func (d *Device) CmdBindPipeline(buffer, pipeline renderer.Handle) {
	d.get(pipeline, "pipeline")
	d.record(buffer, "BindPipeline")
}

func (d *Device) CmdBindDescriptorSet(buffer, layout, set renderer.Handle) {
	d.get(set, "descriptor-set")
	d.record(buffer, "BindDescriptorSet")
}

func (d *Device) CmdBindVertexBuffer(buffer, vertices renderer.Handle) {
	d.get(vertices, "buffer")
	d.record(buffer, "BindVertexBuffer")
}

func (d *Device) CmdBindIndexBuffer(buffer, indices renderer.Handle) {
	d.get(indices, "buffer")
	d.record(buffer, "BindIndexBuffer")
}

func (d *Device) CmdPushConstants(buffer, layout renderer.Handle, stage renderer.ShaderStage, data []byte) {
	d.record(buffer, "PushConstants")
}

func (d *Device) CmdDrawIndexed(buffer renderer.Handle, indexCount uint32) {
	d.record(buffer, "DrawIndexed")
}

func (d *Device) CmdCopyBuffer(buffer, src, dst renderer.Handle, size uint64) {
	d.get(src, "staging-buffer")
	d.get(dst, "buffer")
	d.record(buffer, "CopyBuffer")
}

func (d *Device) CmdCopyBufferToImage(buffer, src, image renderer.Handle, extent renderer.Extent2D) {
	d.get(src, "staging-buffer")
	d.get(image, "image")
	d.record(buffer, "CopyBufferToImage")
}

func (d *Device) CmdTransitionImageLayout(buffer, image renderer.Handle, format renderer.Format, from, to renderer.ImageLayout) {
	d.get(image, "image")
	d.record(buffer, "TransitionImageLayout")
}

func (d *Device) SubmitGraphics(info renderer.SubmitInfo) renderer.Result {
	d.Calls = append(d.Calls, "SubmitGraphics")
	d.get(info.CommandBuffer, "command-buffer")
	if res := pop(&d.SubmitResults); res != renderer.ResultSuccess {
		return res
	}
	d.Submits = append(d.Submits, info)
	if !info.Fence.IsNull() {
		if d.signaled[info.Fence] {
			d.misuse("submit with signaled fence %s", info.Fence)
		}
		d.signaled[info.Fence] = false
	}
	return renderer.ResultSuccess
}

func (d *Device) QueueWaitIdle() renderer.Result {
	d.Calls = append(d.Calls, "QueueWaitIdle")
	return renderer.ResultSuccess
}

var _ renderer.Device = (*Device)(nil)
