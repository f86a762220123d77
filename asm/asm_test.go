package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegOffsetRendering(t *testing.T) {
	assert.Equal(t, "[rbp - 8]", RegOffset{Reg: RBP, Offset: 8}.String())
	assert.Equal(t, "[rbp + 16]", RegOffset{Reg: RBP, Offset: -16}.String())
}

func TestRenderJoinsOneInstructionPerLine(t *testing.T) {
	instrs := []Instr{
		Label{Name: "main"},
		Mov{Dst: Register{Reg: RAX}, Src: Imm{Value: 4}},
		Ret{},
	}
	out := Render(instrs)
	assert.Equal(t, ".intel_syntax noprefix\nmain:\n        mov rax, 4\n        ret\n", out)
}

func TestRenderPrefixesIntelSyntaxDirective(t *testing.T) {
	out := Render([]Instr{Ret{}})
	assert.True(t, strings.HasPrefix(out, ".intel_syntax noprefix\n"))
}

func TestMovUsesQwordPtrOnlyForMemoryOperands(t *testing.T) {
	mem := Mov{Dst: RegOffset{Reg: RBP, Offset: 8}, Src: Register{Reg: RAX}}
	assert.Contains(t, mem.String(), "qword ptr [rbp - 8]")

	reg := Mov{Dst: Register{Reg: RAX}, Src: Imm{Value: 1}}
	assert.NotContains(t, reg.String(), "qword ptr")
}

func TestMemRendering(t *testing.T) {
	assert.Equal(t, "[r8]", Mem{Reg: R8}.String())
	assert.Equal(t, "[r8 + 8]", Mem{Reg: R8, Disp: 8}.String())
	assert.Equal(t, "[r8 - 8]", Mem{Reg: R8, Disp: -8}.String())
}

func TestQuadRendering(t *testing.T) {
	assert.Equal(t, "heap_end: .quad 0", Quad{Name: "heap_end", Value: 0}.String())
}
