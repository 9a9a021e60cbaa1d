package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// VulkanResultString returns the VK_* name of result, with a short
// description when getExtended is set.
func VulkanResultString(result vk.Result, getExtended bool) string {
	name, desc := resultText(result)
	if getExtended && desc != "" {
		return name + " " + desc
	}
	return name
}

func resultText(result vk.Result) (string, string) {
	// From: https://www.khronos.org/registry/vulkan/specs/1.3-extensions/man/html/VkResult.html
	switch result {
	case vk.Success:
		return "VK_SUCCESS", "Command successfully completed"
	case vk.NotReady:
		return "VK_NOT_READY", "A fence or query has not yet completed"
	case vk.Timeout:
		return "VK_TIMEOUT", "A wait operation has not completed in the specified time"
	case vk.Incomplete:
		return "VK_INCOMPLETE", "A return array was too small for the result"
	case vk.Suboptimal:
		return "VK_SUBOPTIMAL_KHR", "A swapchain no longer matches the surface properties exactly, but can still be used to present to the surface successfully."
	case vk.ErrorOutOfHostMemory:
		return "VK_ERROR_OUT_OF_HOST_MEMORY", "A host memory allocation has failed."
	case vk.ErrorOutOfDeviceMemory:
		return "VK_ERROR_OUT_OF_DEVICE_MEMORY", "A device memory allocation has failed."
	case vk.ErrorInitializationFailed:
		return "VK_ERROR_INITIALIZATION_FAILED", "Initialization of an object could not be completed for implementation-specific reasons."
	case vk.ErrorDeviceLost:
		return "VK_ERROR_DEVICE_LOST", "The logical or physical device has been lost."
	case vk.ErrorMemoryMapFailed:
		return "VK_ERROR_MEMORY_MAP_FAILED", "Mapping of a memory object has failed."
	case vk.ErrorLayerNotPresent:
		return "VK_ERROR_LAYER_NOT_PRESENT", "A requested layer is not present or could not be loaded."
	case vk.ErrorExtensionNotPresent:
		return "VK_ERROR_EXTENSION_NOT_PRESENT", "A requested extension is not supported."
	case vk.ErrorFeatureNotPresent:
		return "VK_ERROR_FEATURE_NOT_PRESENT", "A requested feature is not supported."
	case vk.ErrorIncompatibleDriver:
		return "VK_ERROR_INCOMPATIBLE_DRIVER", "The requested version of Vulkan is not supported by the driver."
	case vk.ErrorFormatNotSupported:
		return "VK_ERROR_FORMAT_NOT_SUPPORTED", "A requested format is not supported on this device."
	case vk.ErrorOutOfPoolMemory:
		return "VK_ERROR_OUT_OF_POOL_MEMORY", "A pool memory allocation has failed."
	case vk.ErrorSurfaceLost:
		return "VK_ERROR_SURFACE_LOST_KHR", "A surface is no longer available."
	case vk.ErrorNativeWindowInUse:
		return "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR", "The requested window is already in use."
	case vk.ErrorOutOfDate:
		return "VK_ERROR_OUT_OF_DATE_KHR", "A surface has changed in such a way that it is no longer compatible with the swapchain."
	}
	return fmt.Sprintf("VkResult(%d)", int32(result)), ""
}

func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

// toResult hands a VkResult to the renderer. The numeric values are shared.
func toResult(result vk.Result) renderer.Result {
	return renderer.Result(result)
}

// resultError logs and wraps a failed creation call.
func resultError(op string, result vk.Result) error {
	err := core.NewGraphicsAPIError(op, int32(result), VulkanResultString(result, false))
	core.LogError("%s failed with %s", op, VulkanResultString(result, true))
	return err
}

var end = "\x00"
var endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = VulkanSafeString(list[i])
	}
	return out
}

// cString trims a fixed-size, NUL-padded name array reported by the driver.
func cString(arr []byte) string {
	for i, b := range arr {
		if b == 0 {
			return string(arr[:i])
		}
	}
	return string(arr)
}
