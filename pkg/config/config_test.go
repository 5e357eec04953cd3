package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadMarketplaceDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	c, err := LoadMarketplace()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.JWTTTL != 365*24*time.Hour {
		t.Fatalf("jwt ttl = %v", c.JWTTTL)
	}
	if c.MongoDB != "PlantNet" || c.StoreDriver != "mongo" {
		t.Fatalf("store defaults = %q %q", c.MongoDB, c.StoreDriver)
	}
	if c.ReserveStockOnPlace || c.StockFloor {
		t.Fatal("workflow switches should default off")
	}
	if c.Production() {
		t.Fatal("default env should not be production")
	}
}

func TestLoadMarketplaceRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	if _, err := LoadMarketplace(); err == nil {
		t.Fatal("expected missing JWT_SECRET to fail")
	}
}

func TestLoadNotifyLists(t *testing.T) {
	t.Setenv("NOTIFY_BINDINGS", "order.placed,order.cancelled")
	c, err := LoadNotify()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Bindings) != 2 || c.Bindings[1] != "order.cancelled" {
		t.Fatalf("bindings = %v", c.Bindings)
	}
}
