package types

import (
	"fmt"
	"strings"
)

// AudioFormat is a codec/container pair. FormatVorbis is the session
// transport's native container; everything else requires a transcode.
type AudioFormat int

const (
	FormatVorbis AudioFormat = iota
	FormatOpus
	FormatMP3
	FormatAAC
	FormatFDKAAC
	FormatFLAC
	FormatWav
	FormatWavpack
)

func (f AudioFormat) String() string {
	switch f {
	case FormatVorbis:
		return "vorbis"
	case FormatOpus:
		return "opus"
	case FormatMP3:
		return "mp3"
	case FormatAAC:
		return "aac"
	case FormatFDKAAC:
		return "fdk_aac"
	case FormatFLAC:
		return "flac"
	case FormatWav:
		return "wav"
	case FormatWavpack:
		return "wavpack"
	}

	return "unknown"
}

func ParseFormat(s string) (AudioFormat, error) {
	switch strings.ToLower(s) {
	case "vorbis", "ogg":
		return FormatVorbis, nil
	case "opus":
		return FormatOpus, nil
	case "mp3":
		return FormatMP3, nil
	case "aac", "m4a":
		return FormatAAC, nil
	case "fdk_aac":
		return FormatFDKAAC, nil
	case "flac":
		return FormatFLAC, nil
	case "wav":
		return FormatWav, nil
	case "wavpack", "wv":
		return FormatWavpack, nil
	default:
		return 0, fmt.Errorf("unknown audio format %q", s)
	}
}

func (f AudioFormat) Ext() string {
	switch f {
	case FormatVorbis, FormatOpus:
		return "ogg"
	case FormatMP3:
		return "mp3"
	case FormatAAC, FormatFDKAAC:
		return "m4a"
	case FormatFLAC:
		return "flac"
	case FormatWav:
		return "wav"
	case FormatWavpack:
		return "wv"
	}

	panic("unexpected audio format: " + f.String())
}

// Codec returns the encoder selection passed to the external encoder.
// The native container is copied without re-encoding.
func (f AudioFormat) Codec() string {
	switch f {
	case FormatVorbis:
		return "copy"
	case FormatOpus:
		return "libopus"
	case FormatMP3:
		return "libmp3lame"
	case FormatAAC:
		return "aac"
	case FormatFDKAAC:
		return "libfdk_aac"
	case FormatFLAC:
		return "flac"
	case FormatWav:
		return "pcm_s16le"
	case FormatWavpack:
		return "wavpack"
	}

	panic("unexpected audio format: " + f.String())
}

// FormatFromExt infers the format of an externally hosted audio file from
// its URL extension. Unrecognized extensions fall back to MP3, the common
// case for third-party podcast hosting.
func FormatFromExt(ext string) AudioFormat {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "ogg", "oga":
		return FormatVorbis
	case "opus":
		return FormatOpus
	case "m4a", "mp4", "aac":
		return FormatAAC
	case "flac":
		return FormatFLAC
	case "wav":
		return FormatWav
	default:
		return FormatMP3
	}
}
