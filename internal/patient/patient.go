package patient

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Race string

const (
	RaceWhite    Race = "White"
	RaceBlack    Race = "Black"
	RaceHispanic Race = "Hispanic"
	RaceAsian    Race = "Asian"
	RaceOther    Race = "Other"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderTrans  Gender = "Trans"
)

type Transport string

const (
	TransportAmbulance     Transport = "Ambulance"
	TransportHeliambulance Transport = "Heliambulance"
	TransportSelfCar       Transport = "SelfCar"
)

// Label returns the form label for the transport method.
func (t Transport) Label() string {
	if t == TransportSelfCar {
		return "Self Car"
	}
	return string(t)
}

// Input is one form submission. It is never stored.
type Input struct {
	Age            int       `json:"age" validate:"min=0,max=150"`
	Race           Race      `json:"race" validate:"oneof=White Black Hispanic Asian Other"`
	Gender         Gender    `json:"gender" validate:"oneof=Male Female Trans"`
	Transport      Transport `json:"transportMethod" validate:"oneof=Ambulance Heliambulance SelfCar"`
	GCS            int       `json:"gcs" validate:"min=3,max=15"`
	RespRate       int       `json:"respRate" validate:"min=0,max=60"`
	SystolicBP     int       `json:"systolicBP" validate:"min=50,max=250"`
	HeartRate      int       `json:"heartRate" validate:"min=0,max=200"`
	Symptoms       string    `json:"symptoms"`
	MedicalHistory string    `json:"medicalHistory"`
}

// Defaults mirrors the initial slider and select positions of the form.
func Defaults() Input {
	return Input{
		Age:        50,
		Race:       RaceWhite,
		Gender:     GenderMale,
		Transport:  TransportAmbulance,
		GCS:        14,
		RespRate:   20,
		SystolicBP: 120,
		HeartRate:  80,
	}
}

// HasSymptoms reports whether the symptoms field holds anything but whitespace.
func (in Input) HasSymptoms() bool {
	return strings.TrimSpace(in.Symptoms) != ""
}

// Summary renders the patient summary shown next to the result.
func (in Input) Summary() string {
	lines := []string{
		fmt.Sprintf("Age: %d", in.Age),
		fmt.Sprintf("Race: %s", in.Race),
		fmt.Sprintf("Gender: %s", in.Gender),
		fmt.Sprintf("Transport Method: %s", in.Transport.Label()),
		fmt.Sprintf("GCS: %d", in.GCS),
		fmt.Sprintf("Respiratory Rate: %d breaths/min", in.RespRate),
		fmt.Sprintf("Systolic Blood Pressure: %d mmHg", in.SystolicBP),
		fmt.Sprintf("Heart Rate: %d bpm", in.HeartRate),
		fmt.Sprintf("Symptoms: %s", in.Symptoms),
		fmt.Sprintf("Relevant Medical History: %s", in.MedicalHistory),
	}
	return strings.Join(lines, "\n")
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed range or enum checks.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid patient input: " + strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the numeric ranges and enum values of in.
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate patient input: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
