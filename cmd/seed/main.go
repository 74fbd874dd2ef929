package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/config"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/database"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/embedding"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedDemoUser(db)
	seedKnowledgeBase(db)

	log.Println("✅ Seeding completed!")
}

func seedDemoUser(db *gorm.DB) {
	log.Println("Seeding demo user...")

	var existing entity.User
	if err := db.Where("username = ?", "demo").First(&existing).Error; err == nil {
		log.Println("Demo user already exists, skipping...")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing demo password: %v", err)
	}

	user := entity.User{
		Id:           uuid.New(),
		Username:     "demo",
		PasswordHash: string(hash),
		FullName:     "Demo Customer",
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error creating demo user: %v", err)
	}

	account := entity.Account{
		Id:            uuid.New(),
		UserId:        user.Id,
		AccountNumber: "100200300400",
		AccountType:   "savings",
		Balance:       12450.75,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(&account).Error; err != nil {
		log.Fatalf("Error creating demo account: %v", err)
	}

	cards := []entity.Card{
		{Id: uuid.New(), UserId: user.Id, LastFour: "4532", CardType: "debit", Status: entity.CardStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		{Id: uuid.New(), UserId: user.Id, LastFour: "8821", CardType: "credit", Status: entity.CardStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}
	for _, c := range cards {
		if err := db.Create(&c).Error; err != nil {
			log.Printf("Error creating demo card %s: %v", c.LastFour, err)
		}
	}

	log.Printf("Created demo user %s (login: demo / demo-password)", user.Id)
}

func seedKnowledgeBase(db *gorm.DB) {
	log.Println("Seeding knowledge base...")

	docs := []struct {
		Topic   string
		Content string
	}{
		{"working hours", "Our branches are open Monday to Friday from 9:00 AM to 5:00 PM, and Saturdays from 9:00 AM to 1:00 PM. Online and mobile banking are available 24/7."},
		{"transfer limits", "Daily online transfer limits are $10,000 for savings accounts and $25,000 for current accounts. Limits can be raised temporarily by visiting a branch."},
		{"card charges", "Debit cards carry no annual fee. Credit cards have a $50 annual fee, waived in the first year. International transactions incur a 2.5% foreign exchange markup."},
		{"loan interest rates", "Personal loan rates start at 10.5% per annum. Home loans start at 8.2% and car loans at 9.0%. Exact rates depend on tenure and credit assessment."},
		{"complaint resolution", "Complaints are acknowledged within 1 business day and resolved within 7 business days. You can track a complaint using its reference number."},
		{"account opening", "A savings account can be opened online in about 10 minutes with a government-issued ID and proof of address. There is no minimum balance requirement for the first year."},
	}

	// Embed topics when a provider is reachable; otherwise store zero
	// vectors and rely on lexical fallback at query time.
	cfg := config.Load()
	embedder, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.OllamaBaseURL, cfg.Ai.ApiKey, cfg.Ai.OllamaEmbedModel)
	if err != nil {
		log.Printf("Warn: embedding provider unavailable (%v), seeding zero vectors", err)
		embedder = nil
	}

	for _, d := range docs {
		var existing entity.KnowledgeDocument
		if err := db.Where("topic = ?", d.Topic).First(&existing).Error; err == nil {
			log.Printf("Knowledge doc '%s' already exists, skipping...", d.Topic)
			continue
		}

		vec := make([]float32, 768)
		if embedder != nil {
			embedded, err := embedder.Embed(context.Background(), d.Topic+"\n"+d.Content, embedding.TaskDocument)
			if err != nil {
				log.Printf("Warn: failed to embed '%s': %v, using zero vector", d.Topic, err)
			} else {
				vec = embedded
			}
		}

		doc := entity.KnowledgeDocument{
			Id:        uuid.New(),
			Topic:     d.Topic,
			Content:   d.Content,
			Embedding: pgvector.NewVector(vec),
			CreatedAt: time.Now(),
		}
		if err := db.Create(&doc).Error; err != nil {
			log.Printf("Error creating knowledge doc '%s': %v", d.Topic, err)
		} else {
			log.Printf("Created knowledge doc: %s", d.Topic)
		}
	}
}
