package clients

import (
	"context"
	"fmt"
)

type hrmsClient struct {
	http *HTTPClient
	url  string
}

// NewEmployeeService wires the HRMS batch employee create endpoint.
func NewEmployeeService(http *HTTPClient, url string) EmployeeService {
	return &hrmsClient{http: http, url: url}
}

type hrmsCreateResponse struct {
	Employees []struct {
		PhoneNumber     string `json:"phoneNumber"`
		UserServiceUUID string `json:"userServiceUuid"`
		UserName        string `json:"userName"`
		Password        string `json:"password"`
	} `json:"Employees"`
}

func (c *hrmsClient) CreateBatch(ctx context.Context, reqs []EmployeeCreateRequest) (map[string]EmployeeResult, error) {
	var resp hrmsCreateResponse
	if err := c.http.PostJSON(ctx, c.url, map[string]any{"Employees": reqs}, &resp); err != nil {
		return nil, fmt.Errorf("employee batch create failed: %w", err)
	}

	results := make(map[string]EmployeeResult, len(resp.Employees))
	for _, employee := range resp.Employees {
		results[employee.PhoneNumber] = EmployeeResult{
			UserServiceUUID: employee.UserServiceUUID,
			UserName:        employee.UserName,
			Password:        employee.Password,
		}
	}
	return results, nil
}
