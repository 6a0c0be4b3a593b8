package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/transport/decidedto"
)

type Handler struct {
	svc app.DecideService
}

func NewHandler(svc app.DecideService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Decide(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, decidedto.ErrorBody("invalid body", err)), nil
	}

	var in decidedto.DecideRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, decidedto.ErrorBody("invalid json", err)), nil
	}

	res, err := h.svc.DecideBatch(ctx, in.Batch(), in.Debug)
	if err != nil {
		return jsonResp(http.StatusInternalServerError, decidedto.ErrorBody("decide failed", err)), nil
	}
	return jsonResp(http.StatusOK, decidedto.NewDecideResponse(res)), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
