package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPIN(t *testing.T) {
	user := User{Name: "Almaz", Username: "almaz", Role: RoleWaitress}
	require.NoError(t, user.SetPIN("1234"))

	assert.NotEqual(t, "1234", user.PIN, "the PIN is stored hashed")
	assert.True(t, user.CheckPIN("1234"))
	assert.False(t, user.CheckPIN("4321"))
	assert.False(t, user.CheckPIN(""))
}

func TestMenuItemPriceFor(t *testing.T) {
	item := MenuItem{
		Name:  LocalizedName{EN: "Mango Juice"},
		Price: 80,
		Variants: []ItemVariant{
			{Name: LocalizedName{EN: "Small"}, Price: 60},
			{Name: LocalizedName{EN: "Large"}, Price: 120},
		},
	}

	price, err := item.PriceFor("")
	require.NoError(t, err)
	assert.Equal(t, 80.0, price, "no variant selects the base price")

	price, err = item.PriceFor("Large")
	require.NoError(t, err)
	assert.Equal(t, 120.0, price)

	_, err = item.PriceFor("Gigantic")
	assert.Error(t, err)
}

func TestMenuItemHasAddOn(t *testing.T) {
	addOn := AddOn{Name: LocalizedName{EN: "Extra Injera"}, Price: 20}
	addOn.ID = 7
	item := MenuItem{AvailableAddOns: []AddOn{addOn}}

	assert.True(t, item.HasAddOn(7))
	assert.False(t, item.HasAddOn(8))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusInProgress.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusVoided.IsTerminal())
}

func TestStationIsValid(t *testing.T) {
	assert.True(t, StationKitchen.IsValid())
	assert.True(t, StationJuiceBar.IsValid())
	assert.False(t, PreparationStation("Bakery").IsValid())
}
