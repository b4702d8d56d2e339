package main

import (
	"context"
	"os"

	"github.com/CyCoreSystems/ari-proxy/v5/client"
	"github.com/CyCoreSystems/ari/v5"
	"github.com/CyCoreSystems/ari/v5/client/native"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/joho/godotenv"

	"lineblocs.com/confbridge/groups"
	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/mngrs"
	"lineblocs.com/confbridge/store"
	"lineblocs.com/confbridge/utils"
	"lineblocs.com/confbridge/ws"
)

var ariApp = "confbridge"

func createARIConnection(connectCtx context.Context) (ari.Client, error) {
	log := logger.GetLogger()
	if os.Getenv("ARI_USE_PROXY") == "true" {
		cl, err := client.New(connectCtx,
			client.WithApplication(ariApp),
			client.WithURI(os.Getenv("NATS_URI")))
		if err != nil {
			log.Error("Failed to build ARI proxy client: " + err.Error())
			return nil, err
		}
		return cl, nil
	}
	cl, err := native.Connect(&native.Options{
		Application:  ariApp,
		Username:     os.Getenv("ARI_USERNAME"),
		Password:     os.Getenv("ARI_PASSWORD"),
		URL:          os.Getenv("ARI_URL"),
		WebsocketURL: os.Getenv("ARI_WSURL")})
	if err != nil {
		log.Error("Failed to build native ARI client: " + err.Error())
		return nil, err
	}
	return cl, nil
}

func createKafkaProducer() (*kafka.Producer, error) {
	servers := os.Getenv("KAFKA_SERVER_ENDPOINTS")
	if servers == "" {
		return nil, nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": servers,
		"client.id":         "confbridge",
		"acks":              "all"})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func main() {
	log := logger.GetLogger()
	native.Logger = log

	log.Info("Connecting")
	err := godotenv.Load()
	if err != nil {
		log.Info("Error loading .env file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	connectCtx, cancel2 := context.WithCancel(context.Background())
	defer cancel()
	defer cancel2()

	cl, err := createARIConnection(connectCtx)
	if err != nil {
		log.Error("could not connect to ARI: " + err.Error())
		return
	}
	log.Info("Connected to ARI")
	defer cl.Close()

	producer, err := createKafkaProducer()
	if err != nil {
		log.Error("could not create Kafka producer: " + err.Error())
		producer = nil
	}

	rdb := store.CreateRDB()
	profiles := store.NewRedisStore(rdb)
	menus := utils.LoadMenus()

	feed := ws.NewFeed()
	feed.Start(utils.Config("WS_LISTEN_ADDR"))

	coord := groups.NewCoordinator()
	bridges := mngrs.NewBridgeManager(cl, profiles, profiles, coord, feed, producer)
	participants := mngrs.NewParticipantManager(cl, profiles, bridges, coord, menus)
	bridges.SetRegistry(participants)

	log.Info("Listening for new calls")
	sub := cl.Bus().Subscribe(nil, "StasisStart")

	for {
		select {
		case e := <-sub.Events():
			v := e.(*ari.StasisStart)
			log.Info("Got stasis start, channel: " + v.Channel.ID)
			h := cl.Channel().Get(v.Key(ari.ChannelKey, v.Channel.ID))
			go participants.StartSession(v, h)
		case <-ctx.Done():
			return
		case <-connectCtx.Done():
			cl.Close()
			return
		}
	}
}
