package gofakeit

import "time"

type Faker struct{}

func New(seed uint64) *Faker                         { return &Faker{} }
func (f *Faker) Name() string                        { return "n" }
func (f *Faker) Email() string                       { return "e@x" }
func (f *Faker) Company() string                     { return "c" }
func (f *Faker) DateRange(a, b time.Time) time.Time  { return a }
func (f *Faker) Float64Range(a, b float64) float64   { return a }
