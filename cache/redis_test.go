package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisStore_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectGet("translations:mykey").SetVal("myvalue")

	val, ok, err := store.Get(context.Background(), "translations:mykey")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected cache hit")
	}
	if string(val) != "myvalue" {
		t.Errorf("Expected 'myvalue', got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectGet("translations:mykey").RedisNil()

	val, ok, err := store.Get(context.Background(), "translations:mykey")
	if err != nil {
		t.Fatalf("A miss is not an error, got: %v", err)
	}
	if ok {
		t.Error("Expected cache miss")
	}
	if val != nil {
		t.Errorf("Expected nil value, got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Get_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectGet("translations:mykey").SetErr(errors.New("i/o timeout"))

	_, ok, err := store.Get(context.Background(), "translations:mykey")
	if err == nil {
		t.Fatal("Expected error")
	}
	if ok {
		t.Error("Expected no hit on error")
	}
}

func TestRedisStore_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectSet("translations:mykey", []byte("myvalue"), 0).SetVal("OK")

	if err := store.Set(context.Background(), "translations:mykey", []byte("myvalue")); err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Flush(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectFlushDBAsync().SetVal("OK")

	if err := store.Flush(context.Background()); err != nil {
		t.Errorf("Flush failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Flush_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectFlushDBAsync().SetErr(errors.New("NOPERM"))

	if err := store.Flush(context.Background()); err == nil {
		t.Error("Expected flush error")
	}
}

func TestRedisStore_Info(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectInfo("server", "memory").SetVal(
		"# Server\r\nredis_version:7.2.4\r\nredis_mode:standalone\r\n\r\n" +
			"# Memory\r\nused_memory:1048576\r\nmaxmemory:268435456\r\n",
	)

	info, err := store.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}

	if info.Version != "7.2.4" {
		t.Errorf("Expected version 7.2.4, got %q", info.Version)
	}
	if info.MemoryUsed != 1048576 {
		t.Errorf("Expected used memory 1048576, got %d", info.MemoryUsed)
	}
	if info.MemoryTotal != 268435456 {
		t.Errorf("Expected max memory 268435456, got %d", info.MemoryTotal)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Keys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectScan(0, "*translations:*", scanBatch).SetVal([]string{"translations:a"}, 42)
	mock.ExpectScan(42, "*translations:*", scanBatch).SetVal([]string{"translations:b", "translations:c"}, 0)

	keys, err := store.Keys(context.Background(), "*translations:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	if len(keys) != 3 {
		t.Errorf("Expected 3 keys, got %v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Second)

	mock.ExpectPing().SetVal("PONG")

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestParseInfo(t *testing.T) {
	fields := parseInfo("# Server\nredis_version:7.0.0\nexecutable:/usr/bin/redis-server\n")

	if fields["redis_version"] != "7.0.0" {
		t.Errorf("Expected redis_version 7.0.0, got %q", fields["redis_version"])
	}
	if fields["executable"] != "/usr/bin/redis-server" {
		t.Errorf("Value containing ':' should be kept whole, got %q", fields["executable"])
	}
	if _, ok := fields["# Server"]; ok {
		t.Error("Section headers should be skipped")
	}
}
