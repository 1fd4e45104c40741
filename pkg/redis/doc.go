// Package redis connects alertkit to a Redis server.
//
// Connect retries the initial ping according to Config, and Healthcheck
// adapts a client for the readiness probe of the ops HTTP server:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := push.NewRedisTokenStore(client, cfg.KeyPrefix)
//
// Config fields are read from REDIS_* environment variables.
package redis
