// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ScriptPrefix  = [4]byte{0xff, 0xff, 0xff, 0xff}
	ScriptPattern = [4]byte{0xde, 0xad, 0xbe, 0xef} //pattern: deadbeef
)

type ScriptData struct {
	Header  ScriptHeader
	Payload []byte
}

type ScriptHeader struct {
	Version uint32
	ModID   uint32
}

func (sh *ScriptHeader) GetVersion() uint32 { return sh.Version }
func (sh *ScriptHeader) GetModID() uint32   { return sh.ModID }
func (sh *ScriptHeader) ToString() string {
	return fmt.Sprintf("ScriptHeader:::  Version: %v, ModID: %v", sh.Version, sh.ModID)
}

func DecodeScriptData(bytes []byte) (*ScriptData, error) {
	script := ScriptData{}
	err := rlp.DecodeBytes(bytes, &script)
	return &script, err
}
