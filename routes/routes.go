package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/controllers"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/middleware"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/settlement"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// InitRouter builds the route table. The database handle and settlement
// engine are constructed once in main and injected here.
func InitRouter(db *gorm.DB, engine *settlement.Engine) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for container health probes
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "campus-animal-care-api",
		})
	})).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	origins := []string{"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080"}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Payment endpoints carry a per-IP limit; everything else is read-mostly.
	payLimiter := middleware.NewIPRateLimiter(120, time.Minute)

	payController := controllers.NewPayController(engine)
	pay := api.PathPrefix("/pay").Subrouter()
	pay.Use(payLimiter.Middleware)
	pay.Handle("/donation/{id}/prepay", http.HandlerFunc(payController.DonationPrepay)).Methods(http.MethodPost)
	pay.Handle("/donation/{id}/confirm", http.HandlerFunc(payController.DonationConfirm)).Methods(http.MethodPost)
	pay.Handle("/order/prepay", http.HandlerFunc(payController.OrderPrepay)).Methods(http.MethodPost)

	donationController := controllers.NewDonationController(db)
	api.Handle("/donations", http.HandlerFunc(donationController.List)).Methods(http.MethodGet)
	api.Handle("/donations/user/{userId}", http.HandlerFunc(donationController.UserRecords)).Methods(http.MethodGet)
	api.Handle("/donations/{id}", http.HandlerFunc(donationController.Detail)).Methods(http.MethodGet)

	productController := controllers.NewProductController(db)
	api.Handle("/products", http.HandlerFunc(productController.List)).Methods(http.MethodGet)
	api.Handle("/products/{id}", http.HandlerFunc(productController.Detail)).Methods(http.MethodGet)

	animalController := controllers.NewAnimalController(db)
	api.Handle("/animals", http.HandlerFunc(animalController.List)).Methods(http.MethodGet)
	api.Handle("/animals/{id}", http.HandlerFunc(animalController.Detail)).Methods(http.MethodGet)
	api.Handle("/animals", middleware.AuthMiddleware(http.HandlerFunc(animalController.Create))).Methods(http.MethodPost)

	commentController := controllers.NewCommentController(db)
	api.Handle("/comments", http.HandlerFunc(commentController.List)).Methods(http.MethodGet)
	api.Handle("/comments", middleware.AuthMiddleware(http.HandlerFunc(commentController.Create))).Methods(http.MethodPost)

	noticeController := controllers.NewNoticeController(db)
	api.Handle("/notices", http.HandlerFunc(noticeController.List)).Methods(http.MethodGet)
	api.Handle("/notices/{id}", http.HandlerFunc(noticeController.Detail)).Methods(http.MethodGet)

	wechatController := controllers.NewWechatController(db)
	api.Handle("/wechat/login", http.HandlerFunc(wechatController.Login)).Methods(http.MethodPost)

	uploadController := controllers.NewUploadController()
	api.Handle("/upload/image", middleware.AuthMiddleware(http.HandlerFunc(uploadController.Image))).Methods(http.MethodPost)

	return r
}
