package rect2prefab

import (
	"encoding/base64"
	"encoding/binary"
)

// Mulberry32 是 32 位乘法-异或-移位伪随机数生成器，同一种子总是产生同样的序列
type Mulberry32 struct {
	t uint32
}

func NewMulberry32(seed int64) *Mulberry32 {
	return &Mulberry32{t: uint32(seed)}
}

func (m *Mulberry32) Next() uint32 {
	m.t += 0x6D2B79F5
	x := m.t
	x = (x ^ x>>15) * (x | 1)
	x ^= x + (x^x>>7)*(x|61)
	return x ^ x>>14
}

// IntToID 大端 4 字节再 base64
func IntToID(n uint32) string {
	return base64.StdEncoding.EncodeToString(binary.BigEndian.AppendUint32(nil, n))
}

// GenerateIDs 为 count 个物体生成 id，根物体在前
func GenerateIDs(seed int64, count int) []string {
	rng := NewMulberry32(seed)
	ids := make([]string, count)
	for i := range ids {
		ids[i] = IntToID(rng.Next())
	}
	return ids
}
