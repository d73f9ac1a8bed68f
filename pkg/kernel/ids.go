package kernel

import "github.com/google/uuid"

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type BatchID string

func NewBatchID(id string) BatchID { return BatchID(id) }
func (b BatchID) String() string   { return string(b) }
func (b BatchID) IsEmpty() bool    { return string(b) == "" }

type ResumeID string

func NewResumeID(id string) ResumeID { return ResumeID(id) }
func (r ResumeID) String() string    { return string(r) }
func (r ResumeID) IsEmpty() bool     { return string(r) == "" }

type JobDescriptionID string

func NewJobDescriptionID(id string) JobDescriptionID { return JobDescriptionID(id) }
func (j JobDescriptionID) String() string            { return string(j) }
func (j JobDescriptionID) IsEmpty() bool             { return string(j) == "" }

type RunID string

func NewRunID(id string) RunID { return RunID(id) }
func (r RunID) String() string { return string(r) }
func (r RunID) IsEmpty() bool  { return string(r) == "" }

// GenerateID returns a fresh UUID string for any of the typed IDs above.
func GenerateID() string { return uuid.NewString() }
