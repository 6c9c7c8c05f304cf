package statementsrpc

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const ServiceName = "statements.StatementService"

type StatementServiceClient interface {
	IncomeStatement(ctx context.Context, in *StatementRequest, opts ...grpc.CallOption) (*IncomeStatementResponse, error)
	BalanceSheet(ctx context.Context, in *BalanceSheetRequest, opts ...grpc.CallOption) (*BalanceSheetResponse, error)
	CashFlow(ctx context.Context, in *StatementRequest, opts ...grpc.CallOption) (*CashFlowResponse, error)
	Forecast(ctx context.Context, in *ForecastRequest, opts ...grpc.CallOption) (*ForecastResponse, error)
	ListPeriods(ctx context.Context, in *ListPeriodsRequest, opts ...grpc.CallOption) (*ListPeriodsResponse, error)
}

type statementServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStatementServiceClient(cc grpc.ClientConnInterface) StatementServiceClient {
	return &statementServiceClient{cc: cc}
}

func (c *statementServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *statementServiceClient) IncomeStatement(ctx context.Context, in *StatementRequest, opts ...grpc.CallOption) (*IncomeStatementResponse, error) {
	out := new(IncomeStatementResponse)
	if err := c.invoke(ctx, "IncomeStatement", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *statementServiceClient) BalanceSheet(ctx context.Context, in *BalanceSheetRequest, opts ...grpc.CallOption) (*BalanceSheetResponse, error) {
	out := new(BalanceSheetResponse)
	if err := c.invoke(ctx, "BalanceSheet", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *statementServiceClient) CashFlow(ctx context.Context, in *StatementRequest, opts ...grpc.CallOption) (*CashFlowResponse, error) {
	out := new(CashFlowResponse)
	if err := c.invoke(ctx, "CashFlow", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *statementServiceClient) Forecast(ctx context.Context, in *ForecastRequest, opts ...grpc.CallOption) (*ForecastResponse, error) {
	out := new(ForecastResponse)
	if err := c.invoke(ctx, "Forecast", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *statementServiceClient) ListPeriods(ctx context.Context, in *ListPeriodsRequest, opts ...grpc.CallOption) (*ListPeriodsResponse, error) {
	out := new(ListPeriodsResponse)
	if err := c.invoke(ctx, "ListPeriods", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type StatementServiceServer interface {
	IncomeStatement(context.Context, *StatementRequest) (*IncomeStatementResponse, error)
	BalanceSheet(context.Context, *BalanceSheetRequest) (*BalanceSheetResponse, error)
	CashFlow(context.Context, *StatementRequest) (*CashFlowResponse, error)
	Forecast(context.Context, *ForecastRequest) (*ForecastResponse, error)
	ListPeriods(context.Context, *ListPeriodsRequest) (*ListPeriodsResponse, error)
	mustEmbedUnimplementedStatementServiceServer()
}

type UnimplementedStatementServiceServer struct{}

func (UnimplementedStatementServiceServer) IncomeStatement(context.Context, *StatementRequest) (*IncomeStatementResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IncomeStatement not implemented")
}
func (UnimplementedStatementServiceServer) BalanceSheet(context.Context, *BalanceSheetRequest) (*BalanceSheetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BalanceSheet not implemented")
}
func (UnimplementedStatementServiceServer) CashFlow(context.Context, *StatementRequest) (*CashFlowResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CashFlow not implemented")
}
func (UnimplementedStatementServiceServer) Forecast(context.Context, *ForecastRequest) (*ForecastResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Forecast not implemented")
}
func (UnimplementedStatementServiceServer) ListPeriods(context.Context, *ListPeriodsRequest) (*ListPeriodsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPeriods not implemented")
}
func (UnimplementedStatementServiceServer) mustEmbedUnimplementedStatementServiceServer() {}

func RegisterStatementServiceServer(s grpc.ServiceRegistrar, srv StatementServiceServer) {
	s.RegisterService(&StatementService_ServiceDesc, srv)
}

// unary adapts one typed method to the grpc handler signature.
func unary[Req any, Resp any](method string, call func(StatementServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StatementServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StatementServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var StatementService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatementServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("IncomeStatement", StatementServiceServer.IncomeStatement),
		unary("BalanceSheet", StatementServiceServer.BalanceSheet),
		unary("CashFlow", StatementServiceServer.CashFlow),
		unary("Forecast", StatementServiceServer.Forecast),
		unary("ListPeriods", StatementServiceServer.ListPeriods),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "statements.proto",
}
