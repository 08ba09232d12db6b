package models

// This file serves as the central export point for all data models

// All models are automatically exported from their respective files:
// - Session, Question, Evaluation, CriterionScore from session.go
// - Tag, SessionTag from tag.go
// - ReportSession, ReportQuestion from report.go

// Storage overview:
// 1. sessions (MongoDB)      - live, mutable interview sessions
// 2. tags (MongoDB)          - tag definitions, unique by name
// 3. session_tags (MongoDB)  - session/tag join documents
// 4. report_sessions (SQL)   - write-once summaries of finished interviews
// 5. report_questions (SQL)  - denormalized per-question report rows
