package database

import (
	"fmt"
	"log"
	"os"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedTeacher(); err != nil {
		return fmt.Errorf("failed to seed teacher account: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedTeacher creates the default teacher account from environment variables
func (s *Seeder) SeedTeacher() error {
	var count int64
	if err := s.db.Model(&model.Teacher{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Teacher account already exists, skipping...")
		return nil
	}

	teacherEmail := os.Getenv("SEED_TEACHER_EMAIL")
	teacherPassword := os.Getenv("SEED_TEACHER_PASSWORD")

	if teacherEmail == "" || teacherPassword == "" {
		log.Println("⚠️  SEED_TEACHER_EMAIL and SEED_TEACHER_PASSWORD environment variables not set, skipping teacher creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(teacherPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &model.Teacher{
		Email:        teacherEmail,
		PasswordHash: passwordHash,
		Name:         "Demo Teacher",
		Expertise:    "Mathematics",
		TokenVersion: 0,
	}

	if err := s.db.Create(teacher).Error; err != nil {
		return err
	}

	log.Printf("✅ Created teacher account: %s\n", teacher.Email)
	return nil
}

// SeedCourses creates sample courses for the seeded teacher
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var teacher model.Teacher
	if err := s.db.First(&teacher).Error; err != nil {
		log.Println("⚠️  No teacher account found, skipping course seeding")
		return nil
	}

	courses := []model.Course{
		{
			TeacherID:   teacher.ID,
			Title:       "Algebra I",
			Description: "Linear equations, inequalities and graphing for ninth grade.",
			Grade:       "9",
			Subject:     "Mathematics",
		},
		{
			TeacherID:   teacher.ID,
			Title:       "Geometry",
			Description: "Euclidean geometry with proofs, triangles and circles.",
			Grade:       "10",
			Subject:     "Mathematics",
		},
		{
			TeacherID:   teacher.ID,
			Title:       "Calculus",
			Description: "Limits, derivatives and integrals for the final grade.",
			Grade:       "12",
			Subject:     "Mathematics",
		},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d sample courses\n", len(courses))
	return nil
}

// SeedStudents creates sample student registrations
func (s *Seeder) SeedStudents() error {
	var count int64
	if err := s.db.Model(&model.Student{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Students already exist, skipping...")
		return nil
	}

	var teacher model.Teacher
	if err := s.db.First(&teacher).Error; err != nil {
		log.Println("⚠️  No teacher account found, skipping student seeding")
		return nil
	}

	students := []model.Student{
		{TeacherID: teacher.ID, Name: "Ayşe Yılmaz", Email: "ayse.yilmaz@example.com", Verified: true},
		{TeacherID: teacher.ID, Name: "Mehmet Demir", Email: "mehmet.demir@example.com", Verified: false},
		{TeacherID: teacher.ID, Name: "Elif Kaya", Email: "elif.kaya@example.com", Verified: false},
	}

	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d sample students\n", len(students))
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
