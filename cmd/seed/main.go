package main

import (
	"log"
	"os"

	"docbox-be/internal/model"
	"docbox-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds a demo organization with a small document corpus and a care-network
// graph. Re-runnable: existing titles are skipped.
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

	orgId := mustParse("SEED_ORGANIZATION_ID", "11111111-1111-1111-1111-111111111111")
	uploaderId := mustParse("SEED_UPLOADER_ID", "22222222-2222-2222-2222-222222222222")
	subjectId := mustParse("SEED_SUBJECT_ID", "33333333-3333-3333-3333-333333333333")
	clinicianId := mustParse("SEED_CLINICIAN_ID", "44444444-4444-4444-4444-444444444444")
	facilityId := mustParse("SEED_FACILITY_ID", "55555555-5555-5555-5555-555555555555")

	log.Println("Seeding Document Corpus...")

	documents := []model.Document{
		{
			Title:          "Visitor Access Policy",
			Content:        "Visitors must sign in at the front desk. Visiting hours are 9am to 8pm daily. Visitors to isolation rooms require staff escort.",
			DocumentClass:  "policy",
			OrganizationId: orgId,
			UploadedBy:     uploaderId,
		},
		{
			Title:          "Anticoagulation Protocol",
			Content:        "Warfarin dosing is adjusted to the INR target range of 2.0 to 3.0. Patients on warfarin require INR monitoring at least monthly. Vitamin K reverses warfarin in cases of major bleeding.",
			DocumentClass:  "protocol",
			OrganizationId: orgId,
			UploadedBy:     uploaderId,
		},
		{
			Title:          "Drug Interaction Reference",
			Content:        "Warfarin interacts with many common medications. Amiodarone potentiates warfarin and lowers the required dose. NSAIDs increase bleeding risk when combined with anticoagulants.",
			DocumentClass:  "reference",
			OrganizationId: orgId,
			UploadedBy:     uploaderId,
		},
		{
			Title:          "Progress Note 2026-08-12",
			Content:        "Patient remains on warfarin 5mg daily. INR today 2.4, within target. Continue current dose, recheck in four weeks.",
			DocumentClass:  "clinical_note",
			SubjectId:      &subjectId,
			OrganizationId: orgId,
			UploadedBy:     uploaderId,
		},
	}

	for _, d := range documents {
		var existing model.Document
		if err := db.Where("title = ? AND organization_id = ?", d.Title, orgId).First(&existing).Error; err == nil {
			log.Printf("Document '%s' already exists, skipping...", d.Title)
			continue
		}
		if err := db.Create(&d).Error; err != nil {
			log.Printf("Error: failed to create document '%s': %v", d.Title, err)
			continue
		}
		log.Printf("Created document '%s' (%s)", d.Title, d.DocumentClass)
	}

	log.Println("Seeding Relation Edges...")

	edges := []model.RelationEdge{
		{FromId: clinicianId, FromName: "Dr. A. Hartono", ToId: subjectId, ToName: "Patient S-01", Relation: "TREATS", OrganizationId: orgId},
		{FromId: clinicianId, FromName: "Dr. A. Hartono", ToId: facilityId, ToName: "Ward 3 Clinic", Relation: "WORKS_AT", OrganizationId: orgId},
		{FromId: subjectId, FromName: "Patient S-01", ToId: facilityId, ToName: "Ward 3 Clinic", Relation: "VISITED", OrganizationId: orgId},
	}

	for _, e := range edges {
		var existing model.RelationEdge
		if err := db.Where("from_id = ? AND to_id = ? AND relation = ?", e.FromId, e.ToId, e.Relation).First(&existing).Error; err == nil {
			log.Printf("Edge %s -%s-> %s already exists, skipping...", e.FromName, e.Relation, e.ToName)
			continue
		}
		if err := db.Create(&e).Error; err != nil {
			log.Printf("Error: failed to create edge: %v", err)
			continue
		}
		log.Printf("Created edge %s -%s-> %s", e.FromName, e.Relation, e.ToName)
	}

	log.Println("✅ Success: Seeding completed. Run the indexing consumer (or re-save documents through the API) to build embeddings.")
}

func mustParse(envKey, fallback string) uuid.UUID {
	raw := os.Getenv(envKey)
	if raw == "" {
		raw = fallback
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Fatalf("Error: %s is not a valid uuid: %v", envKey, err)
	}
	return id
}
