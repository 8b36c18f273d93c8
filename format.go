package nativebuf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// PixelFormat is an Android PIXEL_FORMAT_* / HAL_PIXEL_FORMAT_* value.
type PixelFormat int32

const (
	PixelFormatRGBA8888 PixelFormat = 1
	PixelFormatRGBX8888 PixelFormat = 2
	PixelFormatRGB888   PixelFormat = 3
	PixelFormatRGB565   PixelFormat = 4
	PixelFormatBGRA8888 PixelFormat = 5
	PixelFormatYV12     PixelFormat = 0x32315659
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatRGBA8888: "RGBA_8888",
	PixelFormatRGBX8888: "RGBX_8888",
	PixelFormatRGB888:   "RGB_888",
	PixelFormatRGB565:   "RGB_565",
	PixelFormatBGRA8888: "BGRA_8888",
	PixelFormatYV12:     "YV12",
}

func (f PixelFormat) String() string {
	if n, ok := pixelFormatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("PixelFormat(%d)", int32(f))
}

// ParsePixelFormat accepts a format name such as "RGBA_8888" or a number.
func ParsePixelFormat(s string) (PixelFormat, error) {
	name := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "PIXEL_FORMAT_"))
	for f, n := range pixelFormatNames {
		if n == name {
			return f, nil
		}
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("nativebuf: unknown pixel format %q", s)
	}
	return PixelFormat(v), nil
}

// BytesPerPixel returns the size of one pixel, or 0 for planar formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA8888, PixelFormatRGBX8888, PixelFormatBGRA8888:
		return 4
	case PixelFormatRGB888:
		return 3
	case PixelFormatRGB565:
		return 2
	default:
		return 0
	}
}

// TextureFormat returns the matching GPU texture format for formats that
// can be sampled directly. RGBX is exposed as RGBA with the alpha ignored.
func (f PixelFormat) TextureFormat() (gputypes.TextureFormat, bool) {
	switch f {
	case PixelFormatRGBA8888, PixelFormatRGBX8888:
		return gputypes.TextureFormatRGBA8Unorm, true
	case PixelFormatBGRA8888:
		return gputypes.TextureFormatBGRA8Unorm, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

// Usage is a gralloc GRALLOC_USAGE_* bitmask.
type Usage uint32

const (
	UsageSWReadNever   Usage = 0x00000000
	UsageSWReadRarely  Usage = 0x00000002
	UsageSWReadOften   Usage = 0x00000003
	UsageSWReadMask    Usage = 0x0000000F
	UsageSWWriteNever  Usage = 0x00000000
	UsageSWWriteRarely Usage = 0x00000020
	UsageSWWriteOften  Usage = 0x00000030
	UsageSWWriteMask   Usage = 0x000000F0

	UsageHWTexture      Usage = 0x00000100
	UsageHWRender       Usage = 0x00000200
	UsageHW2D           Usage = 0x00000400
	UsageHWComposer     Usage = 0x00000800
	UsageHWFB           Usage = 0x00001000
	UsageProtected      Usage = 0x00004000
	UsageCursor         Usage = 0x00008000
	UsageHWVideoEncoder Usage = 0x00010000
	UsageHWCameraWrite  Usage = 0x00020000
	UsageHWCameraRead   Usage = 0x00040000
	UsageHWMask         Usage = 0x00071F00
)

// CPUReadable reports whether the usage allows software reads after Lock.
func (u Usage) CPUReadable() bool { return u&UsageSWReadMask != 0 }

// CPUWritable reports whether the usage allows software writes after Lock.
func (u Usage) CPUWritable() bool { return u&UsageSWWriteMask != 0 }

var usageNames = []struct {
	bit  Usage
	name string
}{
	{UsageHWTexture, "HW_TEXTURE"},
	{UsageHWRender, "HW_RENDER"},
	{UsageHW2D, "HW_2D"},
	{UsageHWComposer, "HW_COMPOSER"},
	{UsageHWFB, "HW_FB"},
	{UsageProtected, "PROTECTED"},
	{UsageCursor, "CURSOR"},
	{UsageHWVideoEncoder, "HW_VIDEO_ENCODER"},
	{UsageHWCameraWrite, "HW_CAMERA_WRITE"},
	{UsageHWCameraRead, "HW_CAMERA_READ"},
}

func (u Usage) String() string {
	var parts []string
	switch u & UsageSWReadMask {
	case UsageSWReadRarely:
		parts = append(parts, "SW_READ_RARELY")
	case UsageSWReadOften:
		parts = append(parts, "SW_READ_OFTEN")
	}
	switch u & UsageSWWriteMask {
	case UsageSWWriteRarely:
		parts = append(parts, "SW_WRITE_RARELY")
	case UsageSWWriteOften:
		parts = append(parts, "SW_WRITE_OFTEN")
	}
	for _, n := range usageNames {
		if u&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// ParseUsage accepts a number or a |-separated list of flag names.
func ParseUsage(s string) (Usage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Usage(v), nil
	}
	var u Usage
	for _, part := range strings.Split(s, "|") {
		name := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(part), "GRALLOC_USAGE_"))
		switch name {
		case "SW_READ_RARELY":
			u |= UsageSWReadRarely
		case "SW_READ_OFTEN":
			u |= UsageSWReadOften
		case "SW_WRITE_RARELY":
			u |= UsageSWWriteRarely
		case "SW_WRITE_OFTEN":
			u |= UsageSWWriteOften
		default:
			found := false
			for _, n := range usageNames {
				if n.name == name {
					u |= n.bit
					found = true
					break
				}
			}
			if !found {
				return 0, fmt.Errorf("nativebuf: unknown usage flag %q", part)
			}
		}
	}
	return u, nil
}
