package h264encoder

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/trackviz/pkg/ports"
)

// NAL unit types used below.
const (
	nalNonIDR = 1
	nalIDR    = 5
	nalSPS    = 7
	nalPPS    = 8
	nalAUD    = 9
)

// muxMP4 wraps the encoded access units into an MP4 container with one
// H.264 video track at a constant frame rate.
func muxMP4(units []accessUnit, cfg ports.EncoderConfig) ([]byte, error) {
	if len(units) == 0 {
		return nil, ErrNoFrames
	}

	timescale := uint32(cfg.FPS * 1000)
	frameDur := timescale / uint32(cfg.FPS)
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	sps, pps, err := extractSPSPPS(units)
	if err != nil {
		return nil, fmt.Errorf("extract SPS/PPS: %w", err)
	}
	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return nil, fmt.Errorf("create avcC: %w", err)
	}

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(cfg.Width), uint16(cfg.Height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(cfg.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(cfg.Height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	for i, unit := range units {
		flags := mp4.NonSyncSampleFlags
		if unit.keyframe {
			flags = mp4.SyncSampleFlags
		}

		avccData := convertToAVCC(unit)

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(avccData)),
				Dur:   frameDur,
			},
			DecodeTime: uint64(i) * uint64(frameDur),
			Data:       avccData,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

// splitAccessUnits groups an Annex B elementary stream into access units.
// With B-frames disabled each unit holds exactly one picture: any
// parameter set or SEI NAL units are attached to the picture that
// follows them.
func splitAccessUnits(stream []byte) []accessUnit {
	nalus := parseAnnexB(stream)

	var units []accessUnit
	var cur accessUnit
	curHasPicture := false

	emit := func() {
		if curHasPicture {
			units = append(units, cur)
		}
		cur = accessUnit{}
		curHasPicture = false
	}

	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case nalAUD:
			emit()
		case nalNonIDR, nalIDR:
			if curHasPicture {
				emit()
			}
			cur.nalus = append(cur.nalus, nalu)
			curHasPicture = true
			if nalu[0]&0x1F == nalIDR {
				cur.keyframe = true
			}
		default:
			if curHasPicture {
				emit()
			}
			cur.nalus = append(cur.nalus, nalu)
		}
	}
	emit()

	return units
}

// extractSPSPPS extracts SPS and PPS NAL units from the first keyframe.
func extractSPSPPS(units []accessUnit) (sps, pps []byte, err error) {
	for _, unit := range units {
		for _, nalu := range unit.nalus {
			if len(nalu) == 0 {
				continue
			}
			switch nalu[0] & 0x1F {
			case nalSPS:
				if sps == nil {
					sps = append([]byte(nil), nalu...)
				}
			case nalPPS:
				if pps == nil {
					pps = append([]byte(nil), nalu...)
				}
			}
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}
	}

	if sps == nil {
		return nil, nil, fmt.Errorf("SPS not found")
	}
	return nil, nil, fmt.Errorf("PPS not found")
}

// parseAnnexB splits an Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		// Look for start code (0x00 0x00 0x01 or 0x00 0x00 0x00 0x01)
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}

	return nalus
}

// convertToAVCC converts an access unit to AVCC format (length-prefixed
// NAL units). SPS and PPS are dropped from sample data; they live in the
// avcC box.
func convertToAVCC(unit accessUnit) []byte {
	totalSize := 0
	for _, nalu := range unit.nalus {
		totalSize += 4 + len(nalu)
	}

	result := make([]byte, 0, totalSize)
	for _, nalu := range unit.nalus {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case nalSPS, nalPPS, nalAUD:
			continue
		}
		length := len(nalu)
		result = append(result,
			byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
		result = append(result, nalu...)
	}
	return result
}
