// SPDX-License-Identifier: MIT

package meas

import "fmt"

// ChannelKind classifies a sensor channel.
type ChannelKind int

const (
	// MEGMag: magnetometer.
	MEGMag ChannelKind = iota

	// MEGGrad: gradiometer.
	MEGGrad

	// EEG: electroencephalography electrode.
	EEG

	// Stim: stimulus/trigger channel.
	Stim

	// Misc: anything else (EOG, synthesized, unknown).
	Misc
)

// IsMEG reports whether the kind is a MEG sensor kind.
func (k ChannelKind) IsMEG() bool { return k == MEGMag || k == MEGGrad }

// Channel is one sensor: a name (unique within an Info), a kind, and the
// physical unit its data is expressed in ("T", "T/m", "V", ...).
type Channel struct {
	Name string
	Kind ChannelKind
	Unit string
}

// Transform is a rigid 4x4 homogeneous transform between two coordinate
// frames, stored row-major.
type Transform struct {
	From, To string
	M        [16]float64
}

// Identity returns the identity transform between the given frames.
func Identity(from, to string) *Transform {
	return &Transform{From: from, To: to, M: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Info is the channel metadata attached to containers and forward
// solutions. DevHeadT (device to head) may be nil for synthesized Info.
type Info struct {
	Channels []Channel
	SFreq    float64
	DevHeadT *Transform
}

// NChan returns the number of channels.
func (in *Info) NChan() int { return len(in.Channels) }

// ChannelNames returns the channel names in order.
func (in *Info) ChannelNames() []string {
	names := make([]string, len(in.Channels))
	for i, ch := range in.Channels {
		names[i] = ch.Name
	}

	return names
}

// Clone returns a deep copy of the Info.
func (in *Info) Clone() *Info {
	cp := &Info{
		Channels: append([]Channel(nil), in.Channels...),
		SFreq:    in.SFreq,
	}
	if in.DevHeadT != nil {
		t := *in.DevHeadT
		cp.DevHeadT = &t
	}

	return cp
}

// PickNames returns the indices of the named channels.
//
// With ordered=true the result follows the requested order and every name
// must exist (ErrUnknownChannel otherwise). With ordered=false the result
// follows Info order, silently skipping unknown names; an empty result is
// ErrEmptySelection.
func (in *Info) PickNames(names []string, ordered bool) ([]int, error) {
	index := make(map[string]int, len(in.Channels))
	for i, ch := range in.Channels {
		index[ch.Name] = i
	}

	var sel []int
	if ordered {
		for _, name := range names {
			i, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("PickNames %q: %w", name, ErrUnknownChannel)
			}
			sel = append(sel, i)
		}
	} else {
		member := make(map[string]struct{}, len(names))
		for _, name := range names {
			member[name] = struct{}{}
		}
		for i, ch := range in.Channels {
			if _, ok := member[ch.Name]; ok {
				sel = append(sel, i)
			}
		}
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("PickNames: %w", ErrEmptySelection)
	}

	return sel, nil
}

// PickKinds returns the indices of channels of any of the given kinds, in
// Info order. An empty result is ErrEmptySelection.
func (in *Info) PickKinds(kinds ...ChannelKind) ([]int, error) {
	member := make(map[ChannelKind]struct{}, len(kinds))
	for _, k := range kinds {
		member[k] = struct{}{}
	}

	var sel []int
	for i, ch := range in.Channels {
		if _, ok := member[ch.Kind]; ok {
			sel = append(sel, i)
		}
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("PickKinds: %w", ErrEmptySelection)
	}

	return sel, nil
}

// Subset returns a new Info holding the channels at the given indices, in
// the given order.
func (in *Info) Subset(idx []int) *Info {
	cp := in.Clone()
	chs := make([]Channel, len(idx))
	for i, j := range idx {
		chs[i] = in.Channels[j]
	}
	cp.Channels = chs

	return cp
}

// CommonChannels returns the names shared by all infos, in the channel
// order of the first. Used by channel equalization.
func CommonChannels(infos []*Info) []string {
	if len(infos) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, in := range infos {
		for _, ch := range in.Channels {
			counts[ch.Name]++
		}
	}

	var common []string
	for _, ch := range infos[0].Channels {
		if counts[ch.Name] == len(infos) {
			common = append(common, ch.Name)
		}
	}

	return common
}
