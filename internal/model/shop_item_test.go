package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLootKind(t *testing.T) {
	assert.True(t, ValidLootKind("pet"))
	assert.True(t, ValidLootKind("avatar"))
	assert.True(t, ValidLootKind("consumable"))

	// 货币不是合法掉落，开箱不得绕过定价发钱
	assert.False(t, ValidLootKind("coins"))
	assert.False(t, ValidLootKind(""))
}

func TestValidItemCategory(t *testing.T) {
	assert.True(t, ValidItemCategory(ItemLootBoxes))
	assert.False(t, ValidItemCategory(ItemCategory("weapons")))
}
