// Copyright 2026 The go-agentledger Authors
// This file is part of the go-agentledger library.
//
// The go-agentledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-agentledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-agentledger library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// AgentPatch is a partial update of an agent profile. A nil field leaves the
// profile value untouched; a non-nil field replaces it. Note an empty, non-nil
// capability list clears the capabilities.
type AgentPatch struct {
	Name         *string
	Capabilities *[]string
	Pricing      *uint64
	MetadataURI  *string
}

const (
	patchName uint8 = 1 << iota
	patchCapabilities
	patchPricing
	patchMetadataURI
)

// patchRLP is the wire form of an AgentPatch. Mask records which fields are
// present so that an absent field and a zero value stay distinguishable.
type patchRLP struct {
	Mask         uint8
	Name         string
	Capabilities []string
	Pricing      uint64
	MetadataURI  string
}

// Empty reports whether the patch replaces nothing.
func (p *AgentPatch) Empty() bool {
	return p.Name == nil && p.Capabilities == nil && p.Pricing == nil && p.MetadataURI == nil
}

// Apply replaces the present fields of the profile. It does not validate.
func (p *AgentPatch) Apply(profile *AgentProfile) {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Capabilities != nil {
		caps := make([]string, len(*p.Capabilities))
		copy(caps, *p.Capabilities)
		profile.Capabilities = caps
	}
	if p.Pricing != nil {
		profile.Pricing = *p.Pricing
	}
	if p.MetadataURI != nil {
		profile.MetadataURI = *p.MetadataURI
	}
}

// EncodeRLP implements rlp.Encoder.
func (p AgentPatch) EncodeRLP(w io.Writer) error {
	var enc patchRLP
	if p.Name != nil {
		enc.Mask |= patchName
		enc.Name = *p.Name
	}
	if p.Capabilities != nil {
		enc.Mask |= patchCapabilities
		enc.Capabilities = *p.Capabilities
	}
	if p.Pricing != nil {
		enc.Mask |= patchPricing
		enc.Pricing = *p.Pricing
	}
	if p.MetadataURI != nil {
		enc.Mask |= patchMetadataURI
		enc.MetadataURI = *p.MetadataURI
	}
	return rlp.Encode(w, &enc)
}

// DecodeRLP implements rlp.Decoder.
func (p *AgentPatch) DecodeRLP(s *rlp.Stream) error {
	var dec patchRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	*p = AgentPatch{}
	if dec.Mask&patchName != 0 {
		p.Name = &dec.Name
	}
	if dec.Mask&patchCapabilities != 0 {
		caps := dec.Capabilities
		if caps == nil {
			caps = []string{}
		}
		p.Capabilities = &caps
	}
	if dec.Mask&patchPricing != 0 {
		p.Pricing = &dec.Pricing
	}
	if dec.Mask&patchMetadataURI != 0 {
		p.MetadataURI = &dec.MetadataURI
	}
	return nil
}
