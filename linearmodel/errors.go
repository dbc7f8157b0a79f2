package linearmodel

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-paysynth/errs"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrTargetLenMismatch  = fmt.Errorf("target length does not match target rows, %w", errs.ErrInvalidArgument)
	ErrNoTrainingMatrix   = fmt.Errorf("no training matrix, %w", errs.ErrInvalidArgument)
	ErrNoTargetMatrix     = fmt.Errorf("no target matrix, %w", errs.ErrInvalidArgument)
	ErrNoDesignMatrix     = fmt.Errorf("no design matrix for inference, %w", errs.ErrInvalidArgument)
	ErrFeatureLenMismatch = fmt.Errorf("number of features does not match number of model coefficients, %w", errs.ErrInvalidArgument)
	ErrUnderdetermined    = fmt.Errorf("fewer observations than features, %w", errs.ErrInsufficientData)
	ErrRankDeficient      = fmt.Errorf("design matrix is numerically rank deficient, %w", errs.ErrConfiguration)
	ErrNegativeTolerance  = fmt.Errorf("negative rank tolerance, %w", errs.ErrConfiguration)
)
