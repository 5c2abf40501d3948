package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"kartcore/auth"
	"kartcore/config"
	"kartcore/engine"
	"kartcore/kartstate"
	"kartcore/messaging"
	"kartcore/queue"
	"kartcore/rpc"
	"kartcore/rpc/pb"
	"kartcore/store"
	"kartcore/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "kartcore.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("kartcore", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("kartcore: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	redisErr := redisClient.Ping(ctx).Err()
	cancel()
	if redisErr != nil {
		log.Printf("kartcore: redis not available (%v), running without cache", redisErr)
	} else {
		log.Printf("kartcore: redis connected (%s)", cfg.Redis.Address)
	}

	// Queue records
	var queues queue.Store = db
	if cfg.Queue.Backend == "redis" {
		if redisErr != nil {
			log.Fatalf("queue backend is redis but redis is not available: %v", redisErr)
		}
		queues = queue.NewRedisStore(redisClient)
	}

	// Kart state
	var kartCache *kartstate.RedisStore
	if redisErr == nil {
		kartCache = kartstate.NewRedisStore(redisClient)
	}
	karts := kartstate.NewManager(db, kartCache)
	if err := karts.SyncRedisFromSQL(context.Background()); err != nil {
		log.Printf("kartcore: redis sync from SQL: %v", err)
	}

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("kartcore: messaging connect failed (%v)", err)
	} else {
		log.Printf("kartcore: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig: cfg,
		DB:        db,
		Queues:    queues,
		KartState: karts,
		MsgClient: msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Protocol ingestor (inbound from karts, shelves and the mobile app)
	if err := messaging.Listen(msgClient, cfg.Messaging.EventsTopic, messaging.NewCoreHandler(eng)); err != nil {
		log.Printf("kartcore: protocol ingestor subscribe failed: %v", err)
	} else {
		log.Printf("kartcore: protocol ingestor listening on %s", cfg.Messaging.EventsTopic)
	}

	// Outbox drainer (kart assignments and push notifications)
	drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
	drainer.Start()
	defer drainer.Stop()

	tokens := auth.NewTokens(db)

	// gRPC server
	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcServer = grpc.NewServer()
		pb.RegisterReservationsServer(grpcServer, rpc.NewServer(eng, tokens))
		go func() {
			log.Printf("kartcore: grpc server listening on %s", cfg.GRPC.Address)
			if err := grpcServer.Serve(lis); err != nil {
				log.Printf("grpc server: %v", err)
			}
		}()
	}

	// Web server
	handler, stopWeb := www.NewRouter(eng, tokens)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("kartcore: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("kartcore: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("kartcore: shutting down...")
	stopWeb()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("kartcore: stopped")
}
