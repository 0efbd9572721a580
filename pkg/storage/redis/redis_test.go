package redis_test

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/sitesmith/pkg/storage"
	"github.com/papercomputeco/sitesmith/pkg/storage/redis"
	"github.com/papercomputeco/sitesmith/pkg/storage/storagetest"
)

func redisAddr() string {
	addr := os.Getenv("SITESMITH_TEST_REDIS_ADDR")
	if addr == "" {
		Skip("SITESMITH_TEST_REDIS_ADDR not set, skipping Redis tests")
	}
	return addr
}

var _ = Describe("Driver", func() {
	storagetest.DriverSpecs(func() storage.Driver {
		client := goredis.NewClient(&goredis.Options{Addr: redisAddr()})
		DeferCleanup(client.Close)
		d, err := redis.NewDriver(context.Background(), client,
			redis.WithPrefix("sitesmith-test:"+uuid.NewString()+":"),
			redis.WithTTL(time.Minute),
		)
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	It("leaves the caller's client open on Close", func() {
		client := goredis.NewClient(&goredis.Options{Addr: redisAddr()})
		DeferCleanup(client.Close)

		d, err := redis.NewDriver(context.Background(), client)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Close()).To(Succeed())

		Expect(client.Ping(context.Background()).Err()).To(Succeed())
	})

	It("fails fast when redis is unreachable", func() {
		client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
		_, err := redis.NewDriver(context.Background(), client)
		Expect(err).To(HaveOccurred())
	})
})
