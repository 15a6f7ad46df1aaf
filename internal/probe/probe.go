package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Kind classifies prober failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindNonZeroExit
	KindNoStreams
	KindNoVideoStream
	KindNoAudioStream
)

func (k Kind) String() string {
	switch k {
	case KindNonZeroExit:
		return "non-zero exit"
	case KindNoStreams:
		return "no streams"
	case KindNoVideoStream:
		return "no video stream"
	case KindNoAudioStream:
		return "no audio stream"
	default:
		return "unknown"
	}
}

// Error is a typed prober failure.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "probe: " + e.Kind.String()
	}
	return fmt.Sprintf("probe: %s: %s", e.Kind, e.Detail)
}

// AudioTrack describes one audio stream.
type AudioTrack struct {
	Channels int
	Layout   string
	Language string
}

// Info is the technical summary the catalog stores per file.
type Info struct {
	Resolution      string
	VideoCodec      string
	AudioTracks     []AudioTrack
	DurationSeconds float64
}

// Prober inspects media files with a configurable ffprobe binary.
type Prober struct {
	binary string
}

// New creates a Prober. An empty binary falls back to "ffprobe" on PATH.
func New(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecName     string            `json:"codec_name"`
	CodecType     string            `json:"codec_type"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Probe executes ffprobe against path and derives the catalog attributes.
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, &Error{Kind: KindUnknown, Detail: "empty path"}
	}

	cmd := exec.CommandContext(ctx, p.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		kind := KindUnknown
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			kind = KindNonZeroExit
		}
		return Info{}, &Error{Kind: kind, Detail: strings.TrimSpace(string(output))}
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return Info{}, &Error{Kind: KindUnknown, Detail: "decode ffprobe output: " + err.Error()}
	}
	if len(parsed.Streams) == 0 {
		return Info{}, &Error{Kind: KindNoStreams, Detail: path}
	}

	info := Info{}
	for _, stream := range parsed.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = stream.CodecName
				info.Resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			}
		case "audio":
			track := AudioTrack{
				Channels: stream.Channels,
				Layout:   stream.ChannelLayout,
				Language: stream.Tags["language"],
			}
			if track.Language == "" {
				track.Language = "und"
			}
			info.AudioTracks = append(info.AudioTracks, track)
		}
	}
	if info.VideoCodec == "" {
		return Info{}, &Error{Kind: KindNoVideoStream, Detail: path}
	}
	if len(info.AudioTracks) == 0 {
		return Info{}, &Error{Kind: KindNoAudioStream, Detail: path}
	}

	if duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64); err == nil && duration > 0 {
		info.DurationSeconds = duration
	}
	return info, nil
}
